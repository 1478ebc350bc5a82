package http

import (
	"net/http"

	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

// OrderHandler обслуживает /transactions: в HTTP API заказ исторически называется транзакцией.
type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// listOrders
//
//	@Summary	Список транзакций
//	@Tags		transactions
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	SuccessResponse{data=[]OrderResponse}
//	@Router		/transactions [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.listOrders"

	orders, err := o.orderUsecase.ListOrders(r.Context())
	if err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOrdersFetched, toArrOrderResponse(orders))
}

// getOrder
//
//	@Summary	Транзакция по ID со строками
//	@Tags		transactions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"ID транзакции"
//	@Success	200	{object}	SuccessResponse{data=OrderResponse}
//	@Failure	404	{object}	ErrorResponse
//	@Router		/transactions/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.getOrder"

	id, err := parseID(r)
	if err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	order, err := o.orderUsecase.GetOrder(r.Context(), id)
	if err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOK, toOrderResponse(order))
}

// postOrder
//
//	@Summary		Проведение транзакции
//	@Description	Атомарно списывает остатки и сохраняет заказ со строками
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		PostOrderRequest	true	"Покупатель и строки заказа"
//	@Success		201		{object}	SuccessResponse{data=OrderResponse}
//	@Failure		404		{object}	ErrorResponse	"Покупатель не найден"
//	@Failure		422		{object}	ErrorResponse	"Ошибка валидации или нехватка остатка"
//	@Router			/transactions [post]
func (o *OrderHandler) postOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.postOrder"

	var req PostOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	order, err := o.orderUsecase.PostOrder(r.Context(), req.toUseCase(ClaimsFromContext(r.Context())))
	if err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, msgOrderCreated, toOrderResponse(order))
}

// deleteOrder
//
//	@Summary		Удаление транзакции
//	@Description	Удаляет транзакцию и её строки; остатки не возвращаются
//	@Tags			transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"ID транзакции"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/transactions/{id} [delete]
func (o *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrderHandler.deleteOrder"

	id, err := parseID(r)
	if err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	if err := o.orderUsecase.DeleteOrder(r.Context(), id); err != nil {
		handleError(w, o.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOrderDeleted, nil)
}
