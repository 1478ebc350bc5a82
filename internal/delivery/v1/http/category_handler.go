package http

import (
	"net/http"

	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

type CategoryHandler struct {
	categoryUsecase usecase.CategoryUC
	logger          logger.Logger
}

func NewCategoryHandler(categoryUsecase usecase.CategoryUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryUsecase: categoryUsecase, logger: logger}
}

// listCategories
//
//	@Summary	Список категорий
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	SuccessResponse{data=[]CategoryResponse}
//	@Failure	401	{object}	ErrorResponse
//	@Router		/categories [get]
func (h *CategoryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CategoryHandler.listCategories"

	categories, err := h.categoryUsecase.ListCategories(r.Context())
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOK, toArrCategoryResponse(categories))
}

// getCategory
//
//	@Summary	Категория по ID
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"ID категории"
//	@Success	200	{object}	SuccessResponse{data=CategoryResponse}
//	@Failure	404	{object}	ErrorResponse
//	@Failure	422	{object}	ErrorResponse
//	@Router		/categories/{id} [get]
func (h *CategoryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	const op = "CategoryHandler.getCategory"

	id, err := parseID(r)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	category, err := h.categoryUsecase.GetCategory(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgOK, toCategoryResponse(category))
}

// createCategory
//
//	@Summary	Создание категории
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		usecase.CategoryReq	true	"Категория"
//	@Success	200		{object}	SuccessResponse{data=CategoryResponse}
//	@Failure	422		{object}	ErrorResponse
//	@Router		/categories [post]
func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	const op = "CategoryHandler.createCategory"

	var req usecase.CategoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	category, err := h.categoryUsecase.CreateCategory(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgCreated, toCategoryResponse(category))
}

// updateCategory
//
//	@Summary	Изменение категории
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"ID категории"
//	@Param		request	body		usecase.CategoryReq	true	"Категория"
//	@Success	200		{object}	SuccessResponse{data=CategoryResponse}
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/categories/{id} [put]
func (h *CategoryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	const op = "CategoryHandler.updateCategory"

	id, err := parseID(r)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	var req usecase.CategoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	category, err := h.categoryUsecase.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgUpdated, toCategoryResponse(category))
}

// deleteCategory
//
//	@Summary		Удаление категории
//	@Description	Удаляет категорию вместе с её товарами
//	@Tags			categories
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"ID категории"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/categories/{id} [delete]
func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	const op = "CategoryHandler.deleteCategory"

	id, err := parseID(r)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	if err := h.categoryUsecase.DeleteCategory(r.Context(), id); err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgDeleted, nil)
}
