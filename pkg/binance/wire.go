package binance

// Wire structs mirror venue payloads field for field. Amount and price fields
// stay strings until view construction so missing fields are detectable and
// no precision is lost.

type balanceWire struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type accountInfoWire struct {
	Balances []balanceWire `json:"balances"`
}

type orderWire struct {
	OrderID             int64      `json:"orderId"`
	ClientOrderID       string     `json:"clientOrderId"`
	OrderListID         *int64     `json:"orderListId"`
	Status              string     `json:"status"`
	Side                string     `json:"side"`
	Type                string     `json:"type"`
	OrigQty             string     `json:"origQty"`
	ExecutedQty         string     `json:"executedQty"`
	CummulativeQuoteQty string     `json:"cummulativeQuoteQty"`
	Price               string     `json:"price"`
	StopPrice           string     `json:"stopPrice"`
	TimeInForce         string     `json:"timeInForce"`
	OrigQuoteOrderQty   string     `json:"origQuoteOrderQty"`
	Time                int64      `json:"time"`
	TransactTime        int64      `json:"transactTime"`
	Fills               []fillWire `json:"fills"`
}

type fillWire struct {
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	TradeID         int64  `json:"tradeId"`
}

type tradeWire struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	OrderListID     *int64 `json:"orderListId"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	QuoteQty        string `json:"quoteQty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
	IsMaker         bool   `json:"isMaker"`
	IsBestMatch     bool   `json:"isBestMatch"`
}

type ocoOrderWire struct {
	OrderListID       int64           `json:"orderListId"`
	ListClientOrderID string          `json:"listClientOrderId"`
	ListOrderStatus   string          `json:"listOrderStatus"`
	TransactionTime   int64           `json:"transactionTime"`
	OrderReports      []orderWire     `json:"orderReports"`
	Orders            []ocoOrderLegID `json:"orders"`
}

type ocoOrderLegID struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
}

type positionWire struct {
	Symbol                 string `json:"symbol"`
	InitialMargin          string `json:"initialMargin"`
	MaintMargin            string `json:"maintMargin"`
	UnrealizedProfit       string `json:"unrealizedProfit"`
	PositionInitialMargin  string `json:"positionInitialMargin"`
	OpenOrderInitialMargin string `json:"openOrderInitialMargin"`
	Leverage               string `json:"leverage"`
	Isolated               bool   `json:"isolated"`
	EntryPrice             string `json:"entryPrice"`
	BreakEvenPrice         string `json:"breakEvenPrice"`
	MaxNotional            string `json:"maxNotional"`
	PositionSide           string `json:"positionSide"`
	PositionAmt            string `json:"positionAmt"`
	Notional               string `json:"notional"`
	IsolatedWallet         string `json:"isolatedWallet"`
	BidNotional            string `json:"bidNotional"`
	AskNotional            string `json:"askNotional"`
	UpdateTime             int64  `json:"updateTime"`
}

type futuresAssetWire struct {
	Asset                  string `json:"asset"`
	WalletBalance          string `json:"walletBalance"`
	UnrealizedProfit       string `json:"unrealizedProfit"`
	MarginBalance          string `json:"marginBalance"`
	MaintMargin            string `json:"maintMargin"`
	InitialMargin          string `json:"initialMargin"`
	PositionInitialMargin  string `json:"positionInitialMargin"`
	OpenOrderInitialMargin string `json:"openOrderInitialMargin"`
	MaxWithdrawAmount      string `json:"maxWithdrawAmount"`
	CrossWalletBalance     string `json:"crossWalletBalance"`
	CrossUnPnl             string `json:"crossUnPnl"`
	AvailableBalance       string `json:"availableBalance"`
	MarginAvailable        bool   `json:"marginAvailable"`
	UpdateTime             int64  `json:"updateTime"`
}

type futuresAccountWire struct {
	FeeTier                     int                `json:"feeTier"`
	CanTrade                    bool               `json:"canTrade"`
	CanDeposit                  bool               `json:"canDeposit"`
	CanWithdraw                 bool               `json:"canWithdraw"`
	TradeGroupID                int64              `json:"tradeGroupId"`
	MultiAssetsMargin           bool               `json:"multiAssetsMargin"`
	TotalInitialMargin          string             `json:"totalInitialMargin"`
	TotalMaintMargin            string             `json:"totalMaintMargin"`
	TotalWalletBalance          string             `json:"totalWalletBalance"`
	TotalUnrealizedProfit       string             `json:"totalUnrealizedProfit"`
	TotalMarginBalance          string             `json:"totalMarginBalance"`
	TotalPositionInitialMargin  string             `json:"totalPositionInitialMargin"`
	TotalOpenOrderInitialMargin string             `json:"totalOpenOrderInitialMargin"`
	TotalCrossWalletBalance     string             `json:"totalCrossWalletBalance"`
	TotalCrossUnPnl             string             `json:"totalCrossUnPnl"`
	AvailableBalance            string             `json:"availableBalance"`
	MaxWithdrawAmount           string             `json:"maxWithdrawAmount"`
	UpdateTime                  int64              `json:"updateTime"`
	Assets                      []futuresAssetWire `json:"assets"`
	Positions                   []positionWire     `json:"positions"`
}

type filterWire struct {
	FilterType string `json:"filterType"`
	StepSize   string `json:"stepSize"`
	TickSize   string `json:"tickSize"`
}

type symbolInfoWire struct {
	Symbol       string       `json:"symbol"`
	Pair         string       `json:"pair"`
	BaseAsset    string       `json:"baseAsset"`
	QuoteAsset   string       `json:"quoteAsset"`
	ContractType string       `json:"contractType"`
	DeliveryDate int64        `json:"deliveryDate"`
	Permissions  []string     `json:"permissions"`
	Filters      []filterWire `json:"filters"`
}

type exchangeInfoWire struct {
	Symbols []symbolInfoWire `json:"symbols"`
}

type depthWire struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// Stream payloads.

type klineEventWire struct {
	EventType string    `json:"e"`
	EventTime int64     `json:"E"`
	Symbol    string    `json:"s"`
	Kline     klineWire `json:"k"`
}

type klineWire struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

type tradeEventWire struct {
	EventType   string `json:"e"`
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	TradeID     int64  `json:"t"`
	Price       string `json:"p"`
	Quantity    string `json:"q"`
	BuyOrderID  int64  `json:"b"`
	SellOrderID int64  `json:"a"`
	TradeTime   int64  `json:"T"`
	BuyerMaker  bool   `json:"m"`
}
