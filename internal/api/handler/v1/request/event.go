package request

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
)

// datetimeLocal is what an HTML datetime-local input submits.
const datetimeLocal = "2006-01-02T15:04"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var errBadTime = errors.New("must be RFC3339 or YYYY-MM-DDTHH:MM")

// EventForm is the multipart form accepted by create and update. Required
// fields are checked by the service so that every missing field is reported
// at once; Validate only checks the format of what was sent.
type EventForm struct {
	Name        string `form:"name" json:"name"`
	Slug        string `form:"slug" json:"slug"`
	Type        string `form:"type" json:"type"`
	Category    string `form:"category" json:"category"`
	Location    string `form:"location" json:"location"`
	Description string `form:"description" json:"description"`
	StartTime   string `form:"startTime" json:"startTime"`
	EndTime     string `form:"endTime" json:"endTime"`
	Quota       string `form:"quota" json:"quota"`
}

func (f *EventForm) Validate() error {
	f.normalize()

	return validation.ValidateStruct(
		f,
		validation.Field(&f.Name, validation.Length(1, 255)),
		validation.Field(&f.Slug, validation.Length(1, 100), validation.Match(slugPattern)),
		validation.Field(&f.Type, validation.In(string(domain.CategorySeminar), string(domain.CategoryWorkshop))),
		validation.Field(&f.Location, validation.Length(1, 255)),
		validation.Field(&f.StartTime, validation.By(timeRule)),
		validation.Field(&f.EndTime, validation.By(timeRule)),
		validation.Field(&f.Quota, is.Int),
	)
}

// Input converts a validated form.
func (f *EventForm) Input() domain.EventInput {
	f.normalize()

	input := domain.EventInput{
		Name:        f.Name,
		Slug:        f.Slug,
		Category:    domain.Category(f.Type),
		Location:    f.Location,
		Description: f.Description,
	}
	input.StartTime, _ = parseTime(f.StartTime)
	input.EndTime, _ = parseTime(f.EndTime)
	input.Quota, _ = strconv.Atoi(f.Quota)

	return input
}

func (f *EventForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Slug = strings.ToLower(strings.TrimSpace(f.Slug))
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Type == "" {
		f.Type = strings.ToLower(strings.TrimSpace(f.Category))
	}
	f.Location = strings.TrimSpace(f.Location)
	f.StartTime = strings.TrimSpace(f.StartTime)
	f.EndTime = strings.TrimSpace(f.EndTime)
	f.Quota = strings.TrimSpace(f.Quota)
}

func timeRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := parseTime(s); err != nil {
		return errBadTime
	}

	return nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.ParseInLocation(datetimeLocal, s, time.UTC)
}
