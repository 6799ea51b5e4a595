package swiggy

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Coordinates locate the delivery area for every request.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) latString() string { return strconv.FormatFloat(c.Lat, 'f', -1, 64) }
func (c Coordinates) lngString() string { return strconv.FormatFloat(c.Lng, 'f', -1, 64) }

// Restaurant is one search hit.
type Restaurant struct {
	ID           string
	Name         string
	Locality     string
	AreaName     string
	CostForTwo   string
	Cuisines     []string
	Rating       string
	TotalRatings string
	DeliveryTime string
	DeliveryMins int
	IsOpen       bool
}

// Location joins locality and area the way the restaurant card shows it.
func (r Restaurant) Location() string {
	switch {
	case r.Locality != "" && r.AreaName != "":
		return r.Locality + ", " + r.AreaName
	case r.Locality != "":
		return r.Locality
	default:
		return r.AreaName
	}
}

// MenuItem is one dish. Price is in paise.
type MenuItem struct {
	ID          string
	Name        string
	Price       Amount
	Description string
	IsVeg       bool
}

// OrderStatus is the tracked state of a single order.
type OrderStatus struct {
	OrderID         string
	Status          string
	ETA             string
	DeliveryPartner string
	RestaurantName  string
	Total           Amount
	TrackingURL     string
	Items           []OrderedItem
}

// OrderedItem is a line on a placed order as reported by the status call.
type OrderedItem struct {
	Name     string
	Quantity int
}

// OrderSummary is one row of the active orders list.
type OrderSummary struct {
	OrderID        string
	Status         string
	RestaurantName string
	Total          Amount
	ETA            string
	OrderDate      string
}

// OrderLine is one requested item when placing an order.
type OrderLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the body sent to the checkout endpoint.
type PlaceOrderRequest struct {
	RestaurantID string      `json:"restaurantId"`
	Items        []OrderLine `json:"items"`
	Lat          string      `json:"lat"`
	Lng          string      `json:"lng"`
	AddressID    *string     `json:"addressId"`
	PaymentMode  string      `json:"paymentMode"`
}

// PlacedOrder is the checkout result.
type PlacedOrder struct {
	OrderID string
}

// Amount is a money value in paise.
type Amount int64

// Rupees converts paise to rupees.
func (a Amount) Rupees() float64 {
	return float64(a) / 100
}

// String renders the amount as rupees, e.g. "₹249.5".
func (a Amount) String() string {
	return "₹" + strconv.FormatFloat(a.Rupees(), 'f', -1, 64)
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// flexString accepts a JSON string or number and keeps its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
