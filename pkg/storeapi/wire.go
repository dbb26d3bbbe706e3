package storeapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// The backend speaks camelCase JSON and is loose about shapes: ids arrive as
// "id" or "_id", references as bare ids or populated objects, and lists either
// bare or wrapped in an envelope. The wire types below absorb that.

// flexID accepts "id" or "_id".
type flexID struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

func (f flexID) value() string {
	if f.ID != "" {
		return f.ID
	}
	return f.MongoID
}

// flexName accepts either a plain string or an object with a name.
type flexName string

func (f *flexName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*f = flexName(obj.Name)
	return nil
}

// flexNames accepts an array of strings or of named objects.
type flexNames []string

func (f *flexNames) UnmarshalJSON(data []byte) error {
	var items []flexName
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, string(item))
		}
	}
	*f = out
	return nil
}

type wireLineItem struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name,omitempty"`
	Image     string      `json:"image,omitempty"`
	SKU       string      `json:"sku,omitempty"`
	Price     types.Money `json:"price"`
	Size      string      `json:"size,omitempty"`
	Color     string      `json:"color,omitempty"`
	Quantity  int         `json:"quantity"`
	StockQty  *int        `json:"stockQty,omitempty"`
}

func toWireLine(i types.CartLineItem) wireLineItem {
	return wireLineItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		Image:     i.Image,
		SKU:       i.SKU,
		Price:     i.Price,
		Size:      i.Size,
		Color:     i.Color,
		Quantity:  i.Quantity,
		StockQty:  i.StockQuantity,
	}
}

func (w wireLineItem) domain() types.CartLineItem {
	return types.CartLineItem{
		ProductID:     w.ProductID,
		Name:          w.Name,
		Image:         w.Image,
		SKU:           w.SKU,
		Price:         w.Price,
		Size:          w.Size,
		Color:         w.Color,
		Quantity:      w.Quantity,
		StockQuantity: w.StockQty,
	}
}

func toWireLines(items []types.CartLineItem) []wireLineItem {
	out := make([]wireLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, toWireLine(item))
	}
	return out
}

func fromWireLines(items []wireLineItem) []types.CartLineItem {
	out := make([]types.CartLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.domain())
	}
	return out
}

type wireTotals struct {
	Subtotal types.Money `json:"subtotal"`
	Tax      types.Money `json:"tax"`
	Total    types.Money `json:"total"`
}

func toWireTotals(t types.CartTotals) wireTotals {
	return wireTotals{Subtotal: t.Subtotal, Tax: t.Tax, Total: t.Total}
}

func (w wireTotals) domain() types.CartTotals {
	return types.CartTotals{Subtotal: w.Subtotal, Tax: w.Tax, Total: w.Total}
}

type wireProduct struct {
	flexID
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	SKU           string      `json:"sku"`
	Price         types.Money `json:"price"`
	Images        []string    `json:"images"`
	Image         string      `json:"image"`
	Category      flexName    `json:"category"`
	Brand         flexName    `json:"brand"`
	Department    flexName    `json:"department"`
	Sizes         flexNames   `json:"sizes"`
	Colors        flexNames   `json:"colors"`
	StockQuantity *int        `json:"stockQuantity"`
	StockQty      *int        `json:"stockQty"`
	SizeChart     string      `json:"sizeChart"`
	Featured      bool        `json:"featured"`
	AverageRating float64     `json:"averageRating"`
	ReviewCount   int         `json:"reviewCount"`
}

func (w wireProduct) domain() types.Product {
	stock := w.StockQuantity
	if stock == nil {
		stock = w.StockQty
	}
	return types.Product{
		ID:            w.value(),
		Name:          w.Name,
		Description:   w.Description,
		SKU:           w.SKU,
		Price:         w.Price,
		Images:        w.Images,
		Image:         w.Image,
		Category:      string(w.Category),
		Brand:         string(w.Brand),
		Department:    string(w.Department),
		Sizes:         []string(w.Sizes),
		Colors:        []string(w.Colors),
		StockQuantity: stock,
		SizeChart:     w.SizeChart,
		Featured:      w.Featured,
		AverageRating: w.AverageRating,
		ReviewCount:   w.ReviewCount,
	}
}

func fromWireProducts(items []wireProduct) []types.Product {
	out := make([]types.Product, 0, len(items))
	for _, item := range items {
		out = append(out, item.domain())
	}
	return out
}

// wireWishlistItem is either a bare product id or a populated product.
type wireWishlistItem struct {
	entry types.WishlistEntry
}

func (w *wireWishlistItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		w.entry = types.WishlistEntry{ID: id}
		return nil
	}
	var obj struct {
		wireProduct
		ProductID string `json:"productId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	product := obj.wireProduct.domain()
	if product.ID == "" {
		product.ID = obj.ProductID
	}
	w.entry = types.WishlistEntry{ID: product.ID, CachedName: product.Name, CachedImage: product.PrimaryImage()}
	if !product.Price.IsZero() {
		price := product.Price
		w.entry.CachedPrice = &price
	}
	return nil
}

type wireAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

func toWireAddress(a types.BillingAddress) wireAddress {
	return wireAddress{
		Name: a.Name, Email: a.Email, Phone: a.Phone, Address: a.Address,
		Country: a.Country, State: a.State, City: a.City, ZipCode: a.ZipCode,
	}
}

func (w wireAddress) domain() types.BillingAddress {
	return types.BillingAddress{
		Name: w.Name, Email: w.Email, Phone: w.Phone, Address: w.Address,
		Country: w.Country, State: w.State, City: w.City, ZipCode: w.ZipCode,
	}
}

type wireOrder struct {
	flexID
	OrderNumber     string         `json:"orderNumber"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"paymentStatus"`
	PaymentIntentID string         `json:"paymentIntentId"`
	Items           []wireLineItem `json:"items"`
	Totals          *wireTotals    `json:"totals"`
	Subtotal        types.Money    `json:"subtotal"`
	Tax             types.Money    `json:"tax"`
	Total           types.Money    `json:"total"`
	BillingAddress  wireAddress    `json:"billingAddress"`
	CreatedAt       string         `json:"createdAt"`
}

func (w wireOrder) domain() types.Order {
	totals := types.CartTotals{Subtotal: w.Subtotal, Tax: w.Tax, Total: w.Total}
	if w.Totals != nil {
		totals = w.Totals.domain()
	}
	return types.Order{
		ID:              w.value(),
		Number:          w.OrderNumber,
		Status:          w.Status,
		PaymentStatus:   w.PaymentStatus,
		PaymentIntentID: w.PaymentIntentID,
		Items:           fromWireLines(w.Items),
		Totals:          totals,
		BillingAddress:  w.BillingAddress.domain(),
		CreatedAt:       w.CreatedAt,
	}
}

type wireReview struct {
	flexID
	ProductID string   `json:"productId"`
	UserName  string   `json:"userName"`
	User      flexName `json:"user"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	CreatedAt string   `json:"createdAt"`
}

func (w wireReview) domain() types.Review {
	name := w.UserName
	if name == "" {
		name = string(w.User)
	}
	return types.Review{
		ID:        w.value(),
		ProductID: w.ProductID,
		UserName:  name,
		Rating:    w.Rating,
		Comment:   w.Comment,
		CreatedAt: w.CreatedAt,
	}
}

type wireLookup struct {
	flexID
	Name string `json:"name"`
	Code string `json:"code"`
}

// unwrap decodes body into dst, first looking for the list or object under
// one of keys when the body is an envelope object.
func unwrap(body []byte, dst any, keys ...string) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' && len(keys) > 0 {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			for _, key := range keys {
				if inner, ok := envelope[key]; ok && !isNull(inner) {
					return json.Unmarshal(inner, dst)
				}
			}
		}
	}
	return json.Unmarshal(trimmed, dst)
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
