package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Сообщения об ошибках уходят клиенту как есть.
const (
	msgNameExists         = "Name already exists!"
	msgUsernameExists     = "Username already exists!"
	msgCategoryNotFound   = "Category not found!"
	msgProductNotFound    = "Product not found!"
	msgOrderNotFound      = "Transaction not found!"
	msgUserNotFound       = "User not found!"
	msgPricePositive      = "Price must be greater than 0!"
	msgPricePrecision     = "Price must have at most 2 decimal places!"
	msgPriceTooLarge      = "Price must be less than 100000000!"
	msgStockNonNegative   = "Stock must be greater than or equal to 0!"
	msgStockTooLarge      = "Stock must be less than or equal to 2147483647!"
	msgTotalTooLarge      = "Total amount must be less than 100000000!"
	msgLineProductEmpty   = "Product ID cannot be empty!"
	msgLineQuantityFmt    = "Quantity for product ID %d must be greater than 0!"
	msgLineNotFoundFmt    = "Product with ID %d not found!"
	msgLineNoStockFmt     = "Not enough stock for product ID %d, available stock: %d"
	msgInvalidCredentials = "Invalid Credentials!"
)

// maxMoney: верхняя граница DECIMAL(10,2), не включительно.
var maxMoney = decimal.New(1, 8)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

var fieldLabels = map[string]string{
	"name":        "Name",
	"category_id": "Category",
	"price":       "Price",
	"stock":       "Stock",
	"buyer_id":    "User ID",
	"products":    "Products",
	"username":    "Username",
	"password":    "Password",
}

// rule: проверка одного поля, которой нужно хранилище или сравнение значений.
// check возвращает текст ошибки поля либо пустую строку.
type rule struct {
	field string
	check func(ctx context.Context) (string, error)
}

// validateReq проверяет форму запроса, затем по порядку выполняет правила.
// Правило пропускается, если у его поля уже есть ошибка. Все ошибки полей собираются в одну.
func validateReq(ctx context.Context, req any, rules ...rule) error {
	fields, err := shapeErrors(req)
	if err != nil {
		return err
	}

	failed := make(map[string]bool, len(fields))
	for _, f := range fields {
		failed[f.Field] = true
	}

	for _, r := range rules {
		if failed[r.field] {
			continue
		}

		msg, err := r.check(ctx)
		if err != nil {
			return err
		}

		if msg != "" {
			fields = append(fields, e.FieldError{Field: r.field, Message: msg})
			failed[r.field] = true
		}
	}

	if len(fields) > 0 {
		return e.NewValidationError(fields...)
	}

	return nil
}

func shapeErrors(req any) ([]e.FieldError, error) {
	err := validate.Struct(req)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make([]e.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, e.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}

	return fields, nil
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " cannot be empty!"
	case "min":
		if fe.Kind() == reflect.Slice {
			return label + " cannot be empty!"
		}
		return fmt.Sprintf("%s must be at least %s characters!", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters!", label, fe.Param())
	default:
		return label + " is invalid!"
	}
}

func uniqueNameRule(field, name string, excludeID int64, msg string,
	exists func(ctx context.Context, name string, excludeID int64) (bool, error)) rule {
	return rule{field: field, check: func(ctx context.Context) (string, error) {
		found, err := exists(ctx, name, excludeID)
		if err != nil {
			return "", err
		}
		if found {
			return msg, nil
		}
		return "", nil
	}}
}

func categoryExistsRule(categoryID *int64, repo CategoryRepository) rule {
	return rule{field: "category_id", check: func(ctx context.Context) (string, error) {
		_, err := repo.GetByID(ctx, *categoryID)
		if errors.Is(err, e.ErrNotFound) {
			return msgCategoryNotFound, nil
		}
		return "", err
	}}
}

func priceRule(price *decimal.Decimal) rule {
	return rule{field: "price", check: func(context.Context) (string, error) {
		switch {
		case !price.IsPositive():
			return msgPricePositive, nil
		case !price.Equal(price.Truncate(2)):
			return msgPricePrecision, nil
		case price.GreaterThanOrEqual(maxMoney):
			return msgPriceTooLarge, nil
		}
		return "", nil
	}}
}

func stockRule(stock *int64) rule {
	return rule{field: "stock", check: func(context.Context) (string, error) {
		switch {
		case *stock < 0:
			return msgStockNonNegative, nil
		case *stock > math.MaxInt32:
			// products.stock INTEGER
			return msgStockTooLarge, nil
		}
		return "", nil
	}}
}

// orderLinesRule сообщает о первой некорректной строке, как и остальные проверки products.
// Проверяются только id и количество: наличие товара и остаток смотрятся уже под блокировкой,
// поэтому ошибка количества в любой строке важнее отсутствующего товара в предыдущей.
func orderLinesRule(lines []OrderLineReq) rule {
	return rule{field: "products", check: func(context.Context) (string, error) {
		for _, l := range lines {
			if l.ProductID <= 0 {
				return msgLineProductEmpty, nil
			}
			if l.Quantity <= 0 {
				return fmt.Sprintf(msgLineQuantityFmt, l.ProductID), nil
			}
		}
		return "", nil
	}}
}

// notFound: ошибка отсутствующей сущности с указанием поля для ответа клиенту.
func notFound(field, msg string) error {
	return e.NewFieldError(e.ErrNotFound, field, msg)
}

// nameConflict превращает нарушение UNIQUE, проигравшее гонку с правилом уникальности, в ошибку поля.
func nameConflict(err error, field, msg string) error {
	if errors.Is(err, e.ErrConflict) {
		return e.NewFieldError(e.ErrConflict, field, msg)
	}
	return err
}
