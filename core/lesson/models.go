package lesson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edumaster/core"
)

// ClassLevels are the grades lessons and exams are published for.
var ClassLevels = []string{
	"Grade 1 Secondary",
	"Grade 2 Secondary",
	"Grade 3 Secondary",
	"Grade 4 Secondary",
	"Grade 5 Secondary",
}

// NormalizeClassLevel maps a bare grade number ("1".."5") to its published name.
// Anything else is returned trimmed and untouched.
func NormalizeClassLevel(level string) string {
	level = core.CleanString(level)
	if n, err := strconv.Atoi(level); err == nil && n >= 1 && n <= len(ClassLevels) {
		return ClassLevels[n-1]
	}
	return level
}

// Price is a lesson price that tolerates sloppy JSON: numeric strings are parsed,
// anything that is not a finite non-negative number decodes to 0.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	*p = Price(f)
	return nil
}

func (p Price) Float64() float64 { return float64(p) }

func (p Price) String() string { return fmt.Sprintf("%.2f", float64(p)) }

type Lesson struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ClassLevel    string     `json:"classLevel,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	Price         Price      `json:"price"`
	Duration      int        `json:"duration,omitempty"` // minutes
	VideoURL      string     `json:"videoUrl,omitempty"`
	ThumbnailURL  string     `json:"thumbnailUrl,omitempty"`
	IsPaid        bool       `json:"isPaid"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

// Filter narrows down the lessons listing.
type Filter struct {
	Search     string
	ClassLevel string
	IsPaid     *bool
}

// QueryParams encodes the filter the way the lessons endpoint expects it.
func (f Filter) QueryParams() map[string]string {
	params := make(map[string]string)
	if s := core.CleanString(f.Search); s != "" {
		params["search"] = s
	}
	if lvl := NormalizeClassLevel(f.ClassLevel); lvl != "" {
		params["classLevel"] = lvl
	}
	if f.IsPaid != nil {
		params["isPaid"] = strconv.FormatBool(*f.IsPaid)
	}
	return params
}

// Match reports whether l satisfies the filter.
func (f Filter) Match(l Lesson) bool {
	if s := strings.ToLower(core.CleanString(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(l.Title), s) &&
			!strings.Contains(strings.ToLower(l.Description), s) &&
			!strings.Contains(strings.ToLower(l.Subject), s) {
			return false
		}
	}
	if lvl := NormalizeClassLevel(f.ClassLevel); lvl != "" && !strings.EqualFold(lvl, l.ClassLevel) {
		return false
	}
	if f.IsPaid != nil && *f.IsPaid != l.IsPaid {
		return false
	}
	return true
}

// NewLesson contains the information needed to create or update a Lesson.
type NewLesson struct {
	Title         string     `json:"title" validate:"required,notblank_"`
	Description   string     `json:"description"`
	ClassLevel    string     `json:"classLevel" validate:"required,classlevel"`
	Subject       string     `json:"subject"`
	Price         float64    `json:"price" validate:"gte=0"`
	Duration      int        `json:"duration" validate:"gte=0"`
	VideoURL      string     `json:"videoUrl" validate:"omitempty,url"`
	ThumbnailURL  string     `json:"thumbnailUrl" validate:"omitempty,url"`
	IsPaid        bool       `json:"isPaid"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Description = core.CleanString(nl.Description)
	nl.Subject = core.CleanString(nl.Subject)
	nl.ClassLevel = NormalizeClassLevel(nl.ClassLevel)
	return validate.Struct(nl)
}

// Apply copies the payload onto l.
func (nl NewLesson) Apply(l *Lesson) {
	l.Title = nl.Title
	l.Description = nl.Description
	l.ClassLevel = nl.ClassLevel
	l.Subject = nl.Subject
	l.Price = Price(nl.Price)
	l.Duration = nl.Duration
	l.VideoURL = nl.VideoURL
	l.ThumbnailURL = nl.ThumbnailURL
	l.IsPaid = nl.IsPaid
	l.ScheduledDate = nl.ScheduledDate
}

var (
	classLevelTag  = "classlevel"
	classLevelText = "must be one of Grade 1 Secondary to Grade 5 Secondary"
)

// InitValidators registers the lesson specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(classLevelTag, classLevelValidation)
	core.RegisterCustomTranslation(validate, translator, classLevelTag, classLevelText)
}

func classLevelValidation(fl validator.FieldLevel) bool {
	lvl := NormalizeClassLevel(fl.Field().String())
	for _, known := range ClassLevels {
		if strings.EqualFold(lvl, known) {
			return true
		}
	}
	return false
}
