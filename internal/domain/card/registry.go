package card

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// schema is a struct tagged for go-playground/validator, used only to check
// that a decoded Payload carries the fields a card_type requires. It is
// intentionally looser than Payload: card types differ in which optional
// fields are mandatory for them specifically.
type schema struct {
	Prediction     string          `validate:"required,oneof=HOME AWAY OVER UNDER NEUTRAL PASS"`
	Confidence     float64         `validate:"gte=0,lte=1"`
	Recommendation *Recommendation `validate:"required"`
}

var validate = validator.New()

// Registry maps card_type to the schema it must satisfy before a Store
// write commits. Lookups are by exact card_type slug (e.g. "nhl-goalie"),
// falling back to a sport-prefix default so new per-sport driver slugs don't
// need a registry entry on day one.
type Registry struct {
	bySlug map[string]func([]byte) error
}

func NewRegistry() *Registry {
	return &Registry{bySlug: make(map[string]func([]byte) error)}
}

// Register installs a card-type-specific validation func, overriding the
// default schema check for that slug.
func (r *Registry) Register(cardType string, fn func([]byte) error) {
	r.bySlug[cardType] = fn
}

// Validate checks payloadData against the registered validator for
// cardType, or the default schema check if none was registered.
func (r *Registry) Validate(cardType string, payloadData []byte) error {
	if fn, ok := r.bySlug[cardType]; ok {
		return fn(payloadData)
	}
	return defaultValidate(payloadData)
}

func defaultValidate(payloadData []byte) error {
	var p Payload
	if err := json.Unmarshal(payloadData, &p); err != nil {
		return fmt.Errorf("decode card payload: %w", err)
	}
	s := schema{
		Prediction:     p.Prediction,
		Confidence:     p.Confidence,
		Recommendation: p.Recommendation,
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("card payload failed schema validation: %w", err)
	}
	return nil
}
