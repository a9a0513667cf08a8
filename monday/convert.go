package monday

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column types with a dedicated conversion. Anything not listed here falls
// back to the API's text rendering.
const (
	TypeText          = "text"
	TypeLongText      = "long_text"
	TypeNumbers       = "numbers"
	TypeStatus        = "status"
	TypeDropdown      = "dropdown"
	TypeDate          = "date"
	TypeCheckbox      = "checkbox"
	TypePeople        = "people"
	TypeEmail         = "email"
	TypePhone         = "phone"
	TypeLink          = "link"
	TypeRating        = "rating"
	TypeTimeline      = "timeline"
	TypeHour          = "hour"
	TypeItemID        = "item_id"
	TypeCreationLog   = "creation_log"
	TypeLastUpdated   = "last_updated"
	TypeMirror        = "mirror"
	TypeBoardRelation = "board_relation"
	TypeFormula       = "formula"
)

const dateLayout = "2006-01-02"

// Convert maps one column value to a SQL-compatible Go value. A nil result
// means SQL NULL. Numbers become float64, dates and log columns time.Time,
// checkboxes bool, ratings and item ids int64; everything else is a string.
func Convert(cv ColumnValue) (any, error) {
	switch cv.Type {
	case TypeNumbers:
		return convertNumber(cv)
	case TypeDate:
		return convertDate(cv)
	case TypeCheckbox:
		return convertCheckbox(cv)
	case TypeRating:
		return convertRating(cv)
	case TypeItemID:
		return convertItemID(cv)
	case TypeCreationLog:
		return convertLogTime(cv, "created_at")
	case TypeLastUpdated:
		return convertLogTime(cv, "updated_at")
	case TypeHour:
		return convertHour(cv)
	case TypeTimeline:
		return convertTimeline(cv)
	case TypeEmail:
		return convertKeyedString(cv, "email")
	case TypePhone:
		return convertKeyedString(cv, "phone")
	case TypeLink:
		return convertKeyedString(cv, "url")
	case TypeMirror, TypeBoardRelation:
		if cv.DisplayValue != "" {
			return cv.DisplayValue, nil
		}
		return textOrNil(cv), nil
	default:
		// text, long_text, status, dropdown, people, formula, tags,
		// country, location, world_clock, color_picker, file, ...
		return textOrNil(cv), nil
	}
}

func textOrNil(cv ColumnValue) any {
	if cv.Text == "" && isNullValue(cv.Value) {
		return nil
	}
	return cv.Text
}

func isNullValue(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func convertNumber(cv ColumnValue) (any, error) {
	text := strings.TrimSpace(cv.Text)
	if text == "" {
		return nil, nil
	}
	// The API renders numbers without grouping separators, but boards with
	// a unit symbol configured prepend or append it to the text.
	text = strings.Trim(text, "$€£%makMB ")
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("numbers column %s: cannot parse %q", cv.ID, cv.Text)
	}
	return n, nil
}

func convertDate(cv ColumnValue) (any, error) {
	if isNullValue(cv.Value) {
		return nil, nil
	}
	var v struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("date column %s: %w", cv.ID, err)
	}
	if v.Date == "" {
		return nil, nil
	}
	layout, value := dateLayout, v.Date
	if v.Time != "" {
		layout, value = dateLayout+" 15:04:05", v.Date+" "+v.Time
	}
	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("date column %s: cannot parse %q", cv.ID, value)
	}
	return t, nil
}

func convertCheckbox(cv ColumnValue) (any, error) {
	if isNullValue(cv.Value) {
		return false, nil
	}
	var v struct {
		Checked any `json:"checked"`
	}
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("checkbox column %s: %w", cv.ID, err)
	}
	// Older boards serialize checked as the string "true".
	switch checked := v.Checked.(type) {
	case bool:
		return checked, nil
	case string:
		return checked == "true", nil
	}
	return false, nil
}

func convertRating(cv ColumnValue) (any, error) {
	if isNullValue(cv.Value) {
		return nil, nil
	}
	var v struct {
		Rating *int64 `json:"rating"`
	}
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("rating column %s: %w", cv.ID, err)
	}
	if v.Rating == nil {
		return nil, nil
	}
	return *v.Rating, nil
}

func convertItemID(cv ColumnValue) (any, error) {
	if !isNullValue(cv.Value) {
		var v struct {
			ItemID *int64 `json:"item_id"`
		}
		if err := json.Unmarshal(cv.Value, &v); err != nil {
			return nil, fmt.Errorf("item_id column %s: %w", cv.ID, err)
		}
		if v.ItemID != nil {
			return *v.ItemID, nil
		}
	}
	text := strings.TrimSpace(cv.Text)
	if text == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("item_id column %s: cannot parse %q", cv.ID, cv.Text)
	}
	return n, nil
}

func convertLogTime(cv ColumnValue, key string) (any, error) {
	if isNullValue(cv.Value) {
		return nil, nil
	}
	var v map[string]any
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("%s column %s: %w", cv.Type, cv.ID, err)
	}
	s, _ := v[key].(string)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%s column %s: cannot parse %q", cv.Type, cv.ID, s)
	}
	return t.UTC(), nil
}

func convertHour(cv ColumnValue) (any, error) {
	if isNullValue(cv.Value) {
		return nil, nil
	}
	var v struct {
		Hour   *int `json:"hour"`
		Minute int  `json:"minute"`
	}
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("hour column %s: %w", cv.ID, err)
	}
	if v.Hour == nil {
		return nil, nil
	}
	return fmt.Sprintf("%02d:%02d", *v.Hour, v.Minute), nil
}

func convertTimeline(cv ColumnValue) (any, error) {
	if isNullValue(cv.Value) {
		return nil, nil
	}
	var v struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(cv.Value, &v); err != nil {
		return nil, fmt.Errorf("timeline column %s: %w", cv.ID, err)
	}
	if v.From == "" && v.To == "" {
		return nil, nil
	}
	return v.From + " - " + v.To, nil
}

// convertKeyedString handles single-field value objects (email, phone, link)
// where the interesting part lives under one known key.
func convertKeyedString(cv ColumnValue, key string) (any, error) {
	if !isNullValue(cv.Value) {
		var v map[string]any
		if err := json.Unmarshal(cv.Value, &v); err != nil {
			return nil, fmt.Errorf("%s column %s: %w", cv.Type, cv.ID, err)
		}
		if s, ok := v[key].(string); ok && s != "" {
			return s, nil
		}
	}
	return textOrNil(cv), nil
}
