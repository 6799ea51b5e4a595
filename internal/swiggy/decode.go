package swiggy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedShape is returned when no known payload layout matches.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// decodeShapes runs decoders in order against the envelope's data field.
// Each decoder tries one known layout: ok=false means "not this shape" and
// lets the next one run, a non-nil error aborts decoding.
func decodeShapes[T any](payload json.RawMessage, decoders ...func(json.RawMessage) (T, bool, error)) (T, error) {
	var zero T
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return zero, fmt.Errorf("missing data: %w", ErrUnrecognizedShape)
	}
	for _, decode := range decoders {
		out, ok, err := decode(data)
		if err != nil {
			return zero, err
		}
		if ok {
			return out, nil
		}
	}
	return zero, ErrUnrecognizedShape
}

// isObject reports whether data starts a JSON object.
func isObject(data json.RawMessage) bool {
	return len(data) > 0 && data[0] == '{'
}

func isArray(data json.RawMessage) bool {
	return len(data) > 0 && data[0] == '['
}

type restaurantInfo struct {
	ID                 flexString `json:"id"`
	Name               string     `json:"name"`
	Locality           string     `json:"locality"`
	AreaName           string     `json:"areaName"`
	CostForTwo         flexString `json:"costForTwo"`
	Cuisines           []string   `json:"cuisines"`
	AvgRatingString    string     `json:"avgRatingString"`
	TotalRatingsString string     `json:"totalRatingsString"`
	IsOpen             bool       `json:"isOpen"`
	SLA                struct {
		DeliveryTime int    `json:"deliveryTime"`
		SLAString    string `json:"slaString"`
	} `json:"sla"`
}

func (info restaurantInfo) restaurant() Restaurant {
	r := Restaurant{
		ID:           string(info.ID),
		Name:         info.Name,
		Locality:     info.Locality,
		AreaName:     info.AreaName,
		CostForTwo:   string(info.CostForTwo),
		Cuisines:     info.Cuisines,
		Rating:       info.AvgRatingString,
		TotalRatings: info.TotalRatingsString,
		DeliveryTime: info.SLA.SLAString,
		DeliveryMins: info.SLA.DeliveryTime,
		IsOpen:       info.IsOpen,
	}
	if r.Rating == "" {
		r.Rating = "N/A"
	}
	if r.TotalRatings == "" {
		r.TotalRatings = "0"
	}
	if r.DeliveryTime == "" {
		r.DeliveryTime = "N/A"
	}
	return r
}

type gridCard struct {
	GridElements struct {
		InfoWithStyle struct {
			Restaurants []struct {
				Info restaurantInfo `json:"info"`
			} `json:"restaurants"`
		} `json:"infoWithStyle"`
	} `json:"gridElements"`
}

// restaurantsFromCards walks data.cards[].card(.card).gridElements. Cards that
// do not parse are skipped; the page mixes many unrelated card kinds.
func restaurantsFromCards(data json.RawMessage) ([]Restaurant, bool, error) {
	if !isObject(data) {
		return nil, false, nil
	}
	var page struct {
		Cards []json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &page); err != nil || page.Cards == nil {
		return nil, false, nil
	}

	out := []Restaurant{}
	for _, raw := range page.Cards {
		card := unwrapCard(raw)
		if card == nil {
			continue
		}
		var grid gridCard
		if err := json.Unmarshal(card, &grid); err != nil {
			continue
		}
		for _, entry := range grid.GridElements.InfoWithStyle.Restaurants {
			if entry.Info.ID == "" || entry.Info.Name == "" {
				continue
			}
			out = append(out, entry.Info.restaurant())
		}
	}
	return out, true, nil
}

// unwrapCard descends through up to two "card" wrappers.
func unwrapCard(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if !isObject(raw) {
		return nil
	}
	for range 2 {
		var wrapper struct {
			Card json.RawMessage `json:"card"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil
		}
		inner := bytes.TrimSpace(wrapper.Card)
		if !isObject(inner) {
			break
		}
		raw = inner
	}
	return raw
}

func decodeRestaurants(payload json.RawMessage) ([]Restaurant, error) {
	return decodeShapes(payload, restaurantsFromCards)
}

type menuItemJSON struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Price       Amount     `json:"price"`
	Description string     `json:"description"`
	IsVeg       *bool      `json:"isVeg"`
}

func (m menuItemJSON) item() MenuItem {
	veg := true
	if m.IsVeg != nil {
		veg = *m.IsVeg
	}
	return MenuItem{
		ID:          string(m.ID),
		Name:        m.Name,
		Price:       m.Price,
		Description: m.Description,
		IsVeg:       veg,
	}
}

func menuItems(items []menuItemJSON) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.item())
	}
	return out
}

// menuFromItems matches data.items.
func menuFromItems(data json.RawMessage) ([]MenuItem, bool, error) {
	if !isObject(data) {
		return nil, false, nil
	}
	var body struct {
		Items []menuItemJSON `json:"items"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Items == nil {
		return nil, false, nil
	}
	return menuItems(body.Items), true, nil
}

// menuFromCategories matches data.menu.items.
func menuFromCategories(data json.RawMessage) ([]MenuItem, bool, error) {
	if !isObject(data) {
		return nil, false, nil
	}
	var body struct {
		Menu struct {
			Items []menuItemJSON `json:"items"`
		} `json:"menu"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Menu.Items == nil {
		return nil, false, nil
	}
	return menuItems(body.Menu.Items), true, nil
}

func decodeMenu(payload json.RawMessage) ([]MenuItem, error) {
	return decodeShapes(payload, menuFromItems, menuFromCategories)
}

type orderJSON struct {
	OrderID        flexString `json:"orderId"`
	Status         string     `json:"status"`
	RestaurantName string     `json:"restaurantName"`
	Total          Amount     `json:"total"`
	ETA            flexString `json:"eta"`
	OrderDate      string     `json:"orderDate"`
}

func (o orderJSON) summary() OrderSummary {
	return OrderSummary{
		OrderID:        string(o.OrderID),
		Status:         orDefault(o.Status, "Unknown"),
		RestaurantName: orDefault(o.RestaurantName, "N/A"),
		Total:          o.Total,
		ETA:            orDefault(string(o.ETA), "N/A"),
		OrderDate:      orDefault(o.OrderDate, "N/A"),
	}
}

func summaries(orders []orderJSON) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.summary())
	}
	return out
}

// ordersFromList matches data: [...].
func ordersFromList(data json.RawMessage) ([]OrderSummary, bool, error) {
	if !isArray(data) {
		return nil, false, nil
	}
	var orders []orderJSON
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, false, fmt.Errorf("decode orders: %w", err)
	}
	return summaries(orders), true, nil
}

// ordersFromObject matches data.orders.
func ordersFromObject(data json.RawMessage) ([]OrderSummary, bool, error) {
	if !isObject(data) {
		return nil, false, nil
	}
	var body struct {
		Orders []orderJSON `json:"orders"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Orders == nil {
		return nil, false, nil
	}
	return summaries(body.Orders), true, nil
}

func decodeOrders(payload json.RawMessage) ([]OrderSummary, error) {
	return decodeShapes(payload, ordersFromList, ordersFromObject)
}

type orderStatusJSON struct {
	OrderID         flexString      `json:"orderId"`
	Status          string          `json:"status"`
	ETA             flexString      `json:"eta"`
	DeliveryPartner json.RawMessage `json:"deliveryPartner"`
	RestaurantName  string          `json:"restaurantName"`
	Total           Amount          `json:"total"`
	TrackingURL     string          `json:"trackingUrl"`
	Items           []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// partnerName accepts either a plain string or an object with a name.
func partnerName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func orderStatusFromObject(data json.RawMessage) (OrderStatus, bool, error) {
	if !isObject(data) {
		return OrderStatus{}, false, nil
	}
	var body orderStatusJSON
	if err := json.Unmarshal(data, &body); err != nil {
		return OrderStatus{}, false, fmt.Errorf("decode order status: %w", err)
	}
	status := OrderStatus{
		OrderID:         string(body.OrderID),
		Status:          orDefault(strings.TrimSpace(body.Status), "Unknown"),
		ETA:             string(body.ETA),
		DeliveryPartner: partnerName(body.DeliveryPartner),
		RestaurantName:  body.RestaurantName,
		Total:           body.Total,
		TrackingURL:     body.TrackingURL,
	}
	for _, it := range body.Items {
		status.Items = append(status.Items, OrderedItem{Name: it.Name, Quantity: it.Quantity})
	}
	return status, true, nil
}

// orderStatusFromBareObject accepts an order object sent without the data
// envelope. It only matches when the object carries a status field.
func orderStatusFromBareObject(data json.RawMessage) (OrderStatus, bool, error) {
	if !isObject(data) {
		return OrderStatus{}, false, nil
	}
	var head struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Status == nil {
		return OrderStatus{}, false, nil
	}
	return orderStatusFromObject(data)
}

// decodeOrderStatus tries the data envelope first, then a bare order object.
func decodeOrderStatus(payload json.RawMessage) (OrderStatus, error) {
	status, err := decodeShapes(payload, orderStatusFromObject)
	if err == nil || !errors.Is(err, ErrUnrecognizedShape) {
		return status, err
	}
	bare, ok, bareErr := orderStatusFromBareObject(bytes.TrimSpace(payload))
	if bareErr != nil {
		return OrderStatus{}, bareErr
	}
	if !ok {
		return OrderStatus{}, err
	}
	return bare, nil
}

func placedFromObject(data json.RawMessage) (PlacedOrder, bool, error) {
	if !isObject(data) {
		return PlacedOrder{}, false, nil
	}
	var body struct {
		OrderID flexString `json:"orderId"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.OrderID == "" {
		return PlacedOrder{}, false, nil
	}
	return PlacedOrder{OrderID: string(body.OrderID)}, true, nil
}

func decodePlacedOrder(payload json.RawMessage) (PlacedOrder, error) {
	return decodeShapes(payload, placedFromObject)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
