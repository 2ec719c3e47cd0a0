package librarycore

// Book represents a catalog record.
//
// ID is assigned by the storage engine on insert and written back onto the
// record that was passed to the store operation. The natural key of a book is
// the (Category, Title, Press, PublishYear, Author) tuple, independent of ID.
type Book struct {
	ID          int64   `json:"book_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Press       string  `json:"press"`
	PublishYear int     `json:"publish_year"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// NaturalKeyEquals reports whether two books share the same natural key.
// The comparison is by value for every field of the tuple.
func (b Book) NaturalKeyEquals(other Book) bool {
	return b.Category == other.Category &&
		b.Title == other.Title &&
		b.Press == other.Press &&
		b.PublishYear == other.PublishYear &&
		b.Author == other.Author
}

// BookSortColumn names a sortable column of the catalog.
type BookSortColumn string

const (
	BookSortByID          BookSortColumn = "book_id"
	BookSortByCategory    BookSortColumn = "category"
	BookSortByTitle       BookSortColumn = "title"
	BookSortByPress       BookSortColumn = "press"
	BookSortByPublishYear BookSortColumn = "publish_year"
	BookSortByAuthor      BookSortColumn = "author"
	BookSortByPrice       BookSortColumn = "price"
	BookSortByStock       BookSortColumn = "stock"
)

// IsValid reports whether the column is one of the sortable catalog columns.
func (c BookSortColumn) IsValid() bool {
	switch c {
	case BookSortByID, BookSortByCategory, BookSortByTitle, BookSortByPress,
		BookSortByPublishYear, BookSortByAuthor, BookSortByPrice, BookSortByStock:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of a catalog sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// IsValid reports whether the order is ASC or DESC.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}
