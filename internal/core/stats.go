package core

// AccountTotals is the paid/pending breakdown over all accounts.
// Total == Paid + Pending holds exactly because amounts are integer cents.
type AccountTotals struct {
	Total   Money `json:"total"`
	Paid    Money `json:"paid"`
	Pending Money `json:"pending"`
}

// CategoryStat is one row of the expenses-by-category breakdown.
type CategoryStat struct {
	Category   string `json:"category"`
	Amount     Money  `json:"amount"`
	Color      string `json:"color"`
	Percentage int    `json:"percentage"`
}

// DailyTotal is the expense sum for one day of a month.
type DailyTotal struct {
	Day   int   `json:"day"`
	Total Money `json:"total"`
}
