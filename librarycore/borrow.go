package librarycore

// OpenLoanSentinel is the ReturnTime value marking a loan that has not been
// returned yet.
const OpenLoanSentinel int64 = 0

// Borrow represents one loan record. Its natural key is the
// (CardID, BookID, BorrowTime) tuple; at most one loan per (CardID, BookID)
// may be open at any time.
type Borrow struct {
	CardID     int64 `json:"card_id"`
	BookID     int64 `json:"book_id"`
	BorrowTime int64 `json:"borrow_time"`
	ReturnTime int64 `json:"return_time"`
}

// IsOpen reports whether the loan has not been returned yet.
func (b Borrow) IsOpen() bool {
	return b.ReturnTime == OpenLoanSentinel
}

// BorrowHistoryItem is one row of the borrow history join of Borrow and Book.
type BorrowHistoryItem struct {
	CardID      int64   `json:"card_id"`
	BookID      int64   `json:"book_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Press       string  `json:"press"`
	PublishYear int     `json:"publish_year"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	BorrowTime  int64   `json:"borrow_time"`
	ReturnTime  int64   `json:"return_time"`
}
