package http

import (
	"net/http"

	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// listProducts
//
//	@Summary	Список товаров
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	SuccessResponse{data=[]ProductResponse}
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.listProducts"

	products, err := p.productUsecase.ListProducts(r.Context())
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOK, toArrProductResponse(products))
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	SuccessResponse{data=ProductResponse}
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.getProduct"

	id, err := parseID(r)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOK, toProductResponse(product))
}

// createProduct
//
//	@Summary		Регистрация нового товара
//	@Description	Цена передаётся строкой или числом, не больше двух знаков после запятой
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		usecase.ProductReq	true	"Товар"
//	@Success		200		{object}	SuccessResponse{data=ProductResponse}
//	@Failure		422		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.createProduct"

	var req usecase.ProductReq
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), &req)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgCreated, toProductResponse(product))
}

// updateProduct
//
//	@Summary	Изменение товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"ID товара"
//	@Param		request	body		usecase.ProductReq	true	"Товар"
//	@Success	200		{object}	SuccessResponse{data=ProductResponse}
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.updateProduct"

	id, err := parseID(r)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	var req usecase.ProductReq
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgUpdated, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	SuccessResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.deleteProduct"

	id, err := parseID(r)
	if err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		handleError(w, p.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgDeleted, nil)
}
