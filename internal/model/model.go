// Package model defines domain entities exchanged with the shop backend.
package model

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Empty reports whether neither token is present.
func (t Tokens) Empty() bool { return t.AccessToken == "" && t.RefreshToken == "" }

// Credentials are the sign-in inputs.
type Credentials struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// NewUser is the payload of create_user.
type NewUser struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
}

// Claims is the decoded (unverified) payload of an issued JWT.
type Claims struct {
	Subject     string `json:"sub"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
	Type        string `json:"type,omitempty"` // access_token | refresh_token
	ExpiresAt   int64  `json:"exp"`
}

// Product is a catalogue entry.
type Product struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Price  *float64 `json:"price,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
}

// ProductInput creates or updates a product; ID is only used on update.
type ProductInput struct {
	ID        int      `json:"prod_id,omitempty"`
	Name      string   `json:"prod_name,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
}

// Client is a shop customer.
type Client struct {
	ID          int    `json:"cus_id,omitempty"`
	Name        string `json:"cus_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

// OrderItem is one line of an order listing.
type OrderItem struct {
	ProductID   int     `json:"prod_id"`
	ProductName string  `json:"prod_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Order is a sale as returned by the order listing.
type Order struct {
	ID          int         `json:"order_id,omitempty"`
	ClientID    int         `json:"cus_id"`
	ClientName  string      `json:"cus_name"`
	PhoneNumber string      `json:"phone_number"`
	Date        string      `json:"order_date"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderItem `json:"items"`
}

// OrderProductInput is a product line of a new order.
type OrderProductInput struct {
	ProductID   int     `json:"prod_id"`
	ProductName string  `json:"prod_name"`
	Weight      string  `json:"order_weight"`
	Amount      float64 `json:"order_amount"`
	SellPrice   float64 `json:"product_sell_price"`
	LaborCost   float64 `json:"product_labor_cost"`
	BuyPrice    float64 `json:"product_buy_price"`
}

// OrderCreate is the POST order payload.
type OrderCreate struct {
	ID          int                 `json:"order_id,omitempty"`
	ClientID    int                 `json:"cus_id"`
	ClientName  string              `json:"cus_name"`
	Address     string              `json:"address"`
	PhoneNumber string              `json:"phone_number"`
	Date        string              `json:"order_date"`
	Deposit     float64             `json:"order_deposit"`
	Products    []OrderProductInput `json:"order_product_detail"`
}

// PawnItem is one pledged item of a pawn listing.
type PawnItem struct {
	Name           string  `json:"item_name"`
	Description    string  `json:"item_description,omitempty"`
	EstimatedValue float64 `json:"estimated_value"`
}

// Pawn is a pledge as returned by pawn/{id}.
type Pawn struct {
	ID             int        `json:"pawn_id,omitempty"`
	ClientID       int        `json:"cus_id"`
	ClientName     string     `json:"cus_name"`
	PhoneNumber    string     `json:"phone_number"`
	Date           string     `json:"pawn_date"`
	TotalValue     float64    `json:"total_value"`
	InterestRate   float64    `json:"interest_rate"`
	DurationMonths int        `json:"duration_months"`
	Items          []PawnItem `json:"items"`
}

// PawnProduct is a product line of a pawn, both on create and in client history.
type PawnProduct struct {
	ProductID   int     `json:"prod_id"`
	ProductName string  `json:"prod_name"`
	Weight      string  `json:"pawn_weight"`
	Amount      float64 `json:"pawn_amount"`
	UnitPrice   float64 `json:"pawn_unit_price"`
}

// PawnCreate is the POST pawn payload.
type PawnCreate struct {
	ID          int           `json:"pawn_id,omitempty"`
	ClientID    int           `json:"cus_id"`
	ClientName  string        `json:"cus_name"`
	Address     string        `json:"address"`
	PhoneNumber string        `json:"phone_number"`
	Date        string        `json:"pawn_date"`
	ExpireDate  string        `json:"pawn_expire_date"`
	Deposit     float64       `json:"pawn_deposit"`
	Products    []PawnProduct `json:"pawn_product_detail"`
}

// ClientPawn is one pawn inside a client's pawn history.
type ClientPawn struct {
	ID       int           `json:"pawn_id"`
	Deposit  float64       `json:"pawn_deposit"`
	Date     string        `json:"pawn_date"`
	Products []PawnProduct `json:"products"`
}

// ClientPawns is the detail record of pawn/client/{id}.
type ClientPawns struct {
	Client     Client       `json:"client_info"`
	Pawns      []ClientPawn `json:"pawns"`
	TotalPawns int          `json:"total_pawns"`
}

// ClientOrder is one order inside a client's order history.
type ClientOrder struct {
	ID       int                 `json:"order_id"`
	Deposit  float64             `json:"order_deposit"`
	Date     string              `json:"order_date"`
	Products []OrderProductInput `json:"products"`
}

// ClientOrders is the detail record of order/client/{id}.
type ClientOrders struct {
	Client      Client        `json:"client_info"`
	Orders      []ClientOrder `json:"orders"`
	TotalOrders int           `json:"total_orders"`
}

// LastOrder is a dashboard card of the most recent orders.
type LastOrder struct {
	Info struct {
		ID               int     `json:"order_id"`
		Date             string  `json:"order_date"`
		Deposit          float64 `json:"order_deposit"`
		TotalAmount      float64 `json:"total_amount"`
		RemainingBalance float64 `json:"remaining_balance"`
	} `json:"order_info"`
	Client   Client              `json:"client_info"`
	Products []OrderProductInput `json:"products"`
	Summary  struct {
		TotalProducts int     `json:"total_products"`
		TotalAmount   float64 `json:"total_amount"`
		DepositPaid   float64 `json:"deposit_paid"`
		BalanceDue    float64 `json:"balance_due"`
	} `json:"summary"`
}

// PrintCustomer is the customer block of a print payload.
type PrintCustomer struct {
	Name        string `json:"customer_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	ID          *int   `json:"cus_id,omitempty"`
}

// PrintProduct is a product line of a print payload; absent numbers decode as zero.
type PrintProduct struct {
	Name      string  `json:"prod_name,omitempty"`
	Weight    string  `json:"order_weight,omitempty"`
	Amount    float64 `json:"order_amount,omitempty"`
	SellPrice float64 `json:"product_sell_price,omitempty"`
	LaborCost float64 `json:"product_labor_cost,omitempty"`
	BuyPrice  float64 `json:"product_buy_price,omitempty"`
}

// OrderPrint is the payload of order/print.
type OrderPrint struct {
	ID       int            `json:"order_id,omitempty"`
	Date     string         `json:"order_date,omitempty"`
	Deposit  float64        `json:"order_deposit,omitempty"`
	Customer *PrintCustomer `json:"customer,omitempty"`
	Products []PrintProduct `json:"products,omitempty"`
}

// PawnPrint is the payload of pawn/print.
type PawnPrint struct {
	ID         int            `json:"pawn_id,omitempty"`
	Date       string         `json:"pawn_date,omitempty"`
	ExpireDate string         `json:"pawn_expire_date,omitempty"`
	Deposit    float64        `json:"pawn_deposit,omitempty"`
	Customer   *PrintCustomer `json:"customer,omitempty"`
	Products   []PawnProduct  `json:"products,omitempty"`
}
