package enrichment

import (
	"encoding/json"
	"fmt"

	"github.com/fiction-occupations/enricher/internal/models"
)

// Output column names.
const (
	ColumnBookTitle               = "Book Title"
	ColumnBookAuthor              = "Book Author"
	ColumnGenre                   = "Genre"
	ColumnCodes                   = "ISCO"
	ColumnLoveInterest            = "Love Interest"
	ColumnLoveInterestProfessions = "Love Interest Profession"
	ColumnLoveInterestCodes       = "Love Interest's ISCO"

	ProtagonistPrefix = "Protagonist "
	ProfessionPrefix  = "Profession "
)

var fixedColumns = []string{
	ColumnBookTitle,
	ColumnBookAuthor,
	ColumnGenre,
	ColumnCodes,
	ColumnLoveInterest,
	ColumnLoveInterestProfessions,
	ColumnLoveInterestCodes,
}

// Layout tracks how many Protagonist/Profession column pairs the output
// table carries. The count only grows.
type Layout struct {
	protagonists int
}

// NewLayout starts from the number of pairs already in the output table.
func NewLayout(existing int) *Layout {
	if existing < 0 {
		existing = 0
	}
	return &Layout{protagonists: existing}
}

// Observe widens the layout to fit n protagonists. It reports whether the
// layout grew.
func (l *Layout) Observe(n int) bool {
	if n <= l.protagonists {
		return false
	}
	l.protagonists = n
	return true
}

// Width is the current number of column pairs.
func (l *Layout) Width() int {
	return l.protagonists
}

// Header returns the column names for the current width.
func (l *Layout) Header() []string {
	header := make([]string, 0, len(fixedColumns)+2*l.protagonists)
	header = append(header, fixedColumns...)
	for i := 1; i <= l.protagonists; i++ {
		header = append(header,
			fmt.Sprintf("%s%d", ProtagonistPrefix, i),
			fmt.Sprintf("%s%d", ProfessionPrefix, i),
		)
	}
	return header
}

// Flatten renders a record as a row matching Header. Protagonist slots past
// the record's own cast hold models.MissingValue.
func (l *Layout) Flatten(rec models.MergedRecord) ([]string, error) {
	r := rec.Result

	codes, err := listCell(r.Codes)
	if err != nil {
		return nil, err
	}
	loveProfessions, err := listCell(r.LoveInterestProfessions)
	if err != nil {
		return nil, err
	}
	loveCodes, err := listCell(r.LoveInterestCodes)
	if err != nil {
		return nil, err
	}

	loveInterest := models.MissingValue
	if r.LoveInterest != nil {
		loveInterest = *r.LoveInterest
	}

	row := make([]string, 0, len(fixedColumns)+2*l.protagonists)
	row = append(row,
		rec.Query.Title,
		rec.Query.Author,
		r.Genre,
		codes,
		loveInterest,
		loveProfessions,
		loveCodes,
	)

	for i := 0; i < l.protagonists; i++ {
		name := models.MissingValue
		if i < len(r.Protagonists) {
			name = r.Protagonists[i]
		}
		careers := models.MissingValue
		if i < len(r.Professions) {
			careers, err = listCell(r.Professions[i])
			if err != nil {
				return nil, err
			}
		}
		row = append(row, name, careers)
	}

	return row, nil
}

func listCell[T any](list []T) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode cell: %w", err)
	}
	return string(data), nil
}
