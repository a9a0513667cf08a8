package monday

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/frankban/quicktest"
)

func cv(typ, text, value string) ColumnValue {
	return ColumnValue{ID: "col1", Type: typ, Text: text, Value: json.RawMessage(value)}
}

func TestConvert_TextTypes(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeText, "hello", `"hello"`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "hello")

	v, err = Convert(cv(TypeStatus, "Done", `{"index":1}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "Done")

	// Empty text with a null raw value is NULL, not empty string.
	v, err = Convert(cv(TypeText, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)

	// Unknown types fall back to text.
	v, err = Convert(cv("vote", "3 votes", `{"votes":[1,2,3]}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "3 votes")
}

func TestConvert_Numbers(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeNumbers, "42.5", `"42.5"`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, 42.5)

	v, err = Convert(cv(TypeNumbers, "$120", `"120"`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, 120.0)

	v, err = Convert(cv(TypeNumbers, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)

	_, err = Convert(cv(TypeNumbers, "n/a", `"n/a"`))
	c.Assert(err, quicktest.ErrorMatches, `numbers column col1: cannot parse "n/a"`)
}

func TestConvert_Date(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeDate, "2024-03-15", `{"date":"2024-03-15"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	v, err = Convert(cv(TypeDate, "2024-03-15 09:30", `{"date":"2024-03-15","time":"09:30:00"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	v, err = Convert(cv(TypeDate, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)

	_, err = Convert(cv(TypeDate, "", `{"date":"15/03/2024"}`))
	c.Assert(err, quicktest.ErrorMatches, `date column col1: cannot parse "15/03/2024"`)
}

func TestConvert_Checkbox(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeCheckbox, "v", `{"checked":"true"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, true)

	v, err = Convert(cv(TypeCheckbox, "v", `{"checked":true}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, true)

	v, err = Convert(cv(TypeCheckbox, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, false)
}

func TestConvert_RatingAndItemID(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeRating, "4", `{"rating":4}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, int64(4))

	v, err = Convert(cv(TypeRating, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)

	v, err = Convert(cv(TypeItemID, "", `{"item_id":123456789}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, int64(123456789))

	v, err = Convert(cv(TypeItemID, "987", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, int64(987))
}

func TestConvert_LogColumns(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeCreationLog, "", `{"created_at":"2023-11-02T08:15:00Z"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, time.Date(2023, 11, 2, 8, 15, 0, 0, time.UTC))

	v, err = Convert(cv(TypeLastUpdated, "", `{"updated_at":"2024-01-01T12:00:00Z"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	v, err = Convert(cv(TypeCreationLog, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)
}

func TestConvert_HourAndTimeline(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeHour, "9:05", `{"hour":9,"minute":5}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "09:05")

	v, err = Convert(cv(TypeTimeline, "", `{"from":"2024-01-01","to":"2024-02-01"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "2024-01-01 - 2024-02-01")

	v, err = Convert(cv(TypeTimeline, "", "null"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)
}

func TestConvert_KeyedValues(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(cv(TypeEmail, "Jo", `{"email":"jo@example.com","text":"Jo"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "jo@example.com")

	v, err = Convert(cv(TypePhone, "", `{"phone":"+61400000000","countryShortName":"AU"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "+61400000000")

	v, err = Convert(cv(TypeLink, "docs", `{"url":"https://example.com","text":"docs"}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "https://example.com")

	// Missing key falls back to text.
	v, err = Convert(cv(TypeEmail, "unparsed", `{}`))
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "unparsed")
}

func TestConvert_MirrorUsesDisplayValue(t *testing.T) {
	c := quicktest.New(t)

	v, err := Convert(ColumnValue{ID: "m1", Type: TypeMirror, DisplayValue: "Linked item"})
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.Equals, "Linked item")

	v, err = Convert(ColumnValue{ID: "m1", Type: TypeBoardRelation})
	c.Assert(err, quicktest.IsNil)
	c.Assert(v, quicktest.IsNil)
}
