package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cardapio/internal/models"
	"cardapio/internal/money"
	"cardapio/internal/service"
	"cardapio/internal/storage"
)

const maxMultipartMemory = 32 << 20

/*
=======================
  MULTIPART FORMS
=======================
*/

// multipartForm is the parsed admin form: the service input plus the
// optional image, whose body must be closed once the request is handled.
type multipartForm[T any] struct {
	Input T
	Image *storage.Image
	close func() error
}

func (f multipartForm[T]) Close() {
	if f.close != nil {
		_ = f.close()
	}
}

func parseMultipartCategoryRequest(c *gin.Context) (multipartForm[service.CategoryInput], error) {
	var form multipartForm[service.CategoryInput]
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return form, err
	}

	form.Input.Name = optionalString(c, "name")
	active, err := optionalBool(c, "active")
	if err != nil {
		return form, err
	}
	form.Input.Active = active

	form.Image, form.close, err = readImage(c)
	return form, err
}

func parseMultipartProductRequest(c *gin.Context) (multipartForm[service.ProductInput], error) {
	var form multipartForm[service.ProductInput]
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return form, err
	}

	in := &form.Input
	in.Name = optionalString(c, "name")
	in.CategoryID = optionalString(c, "categoryId")
	in.Description = optionalString(c, "description")

	var err error
	if in.Active, err = optionalBool(c, "active"); err != nil {
		return form, err
	}
	if in.Price, err = optionalAmount(c, "price"); err != nil {
		return form, err
	}

	// ---- SIZES ----
	// sizeLabel[i] pairs with sizePrice[i]; clearSizes=true drops all sizes.

	labels, labelsSet := c.GetPostFormArray("sizeLabel")
	prices, _ := c.GetPostFormArray("sizePrice")
	if labelsSet {
		if len(labels) != len(prices) {
			return form, fmt.Errorf("sizeLabel and sizePrice must have the same length")
		}
		in.Sizes = make([]models.Size, 0, len(labels))
		for i, label := range labels {
			price, err := parseAmount(prices[i])
			if err != nil {
				return form, fmt.Errorf("sizePrice %s: %w", label, err)
			}
			in.Sizes = append(in.Sizes, models.Size{Size: strings.TrimSpace(label), Price: models.Amount(price)})
		}
		in.SizesSet = true
	}
	if drop, err := optionalBool(c, "clearSizes"); err != nil {
		return form, err
	} else if drop != nil && *drop {
		in.Sizes = nil
		in.SizesSet = true
	}

	form.Image, form.close, err = readImage(c)
	return form, err
}

func parseMultipartComboRequest(c *gin.Context) (multipartForm[service.ComboInput], error) {
	var form multipartForm[service.ComboInput]
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return form, err
	}

	in := &form.Input
	in.Name = optionalString(c, "name")
	in.CategoryID = optionalString(c, "categoryId")
	in.Description = optionalString(c, "description")
	in.DiscountType = optionalString(c, "discountType")

	var err error
	if in.Active, err = optionalBool(c, "active"); err != nil {
		return form, err
	}
	if in.DiscountValue, err = optionalAmount(c, "discountValue"); err != nil {
		return form, err
	}

	if ids, ok := c.GetPostFormArray("itemId"); ok {
		in.ItemIDs = make([]string, 0, len(ids))
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				in.ItemIDs = append(in.ItemIDs, id)
			}
		}
		in.ItemsSet = true
	}

	form.Image, form.close, err = readImage(c)
	return form, err
}

/*
=======================
  IMAGE
=======================
*/

func readImage(c *gin.Context) (*storage.Image, func() error, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) ||
			strings.Contains(err.Error(), "no such file") {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	body, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	img := &storage.Image{Filename: file.Filename, Size: file.Size, Body: body}
	return img, body.Close, nil
}

/*
=======================
  HELPERS
=======================
*/

func optionalString(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil, nil
	}
	parsed, err := parseBoolValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &parsed, nil
}

func optionalAmount(c *gin.Context, key string) (*float64, error) {
	value, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseAmount(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &parsed, nil
}

var (
	localizedAmount = regexp.MustCompile(`^(R\$\s*)?-?(\d{1,3}(\.\d{3})+|\d+)(,\d+)?$`)
	plainAmount     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// parseAmount accepts the admin form's "10.5" and the pt-BR "10,50" or
// "1.234,56". pt-BR values are read by money.Parse, the same reader the
// checkout uses.
func parseAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)
	var amount decimal.Decimal
	switch {
	case plainAmount.MatchString(value):
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", value)
		}
		amount = parsed
	case localizedAmount.MatchString(value):
		amount = money.Parse(value)
	default:
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	parsed := money.Float(amount)
	if !money.Finite(parsed) {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return parsed, nil
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, route string, err error) {
	respondWithError(c, http.StatusBadRequest, route, err.Error())
}
