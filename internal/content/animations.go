package content

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"

	_ "embed"
)

//go:embed animations.json
var animationsJSON []byte

type animationCategory struct {
	Animations []string `json:"animations"`
}

// AnimationLibrary resolves mood categories to transport-level animation
// references. Missing categories degrade to "no animation" rather than
// failing the caller.
type AnimationLibrary struct {
	categories map[string]animationCategory
}

// NewAnimationLibrary loads the embedded animation catalogue.
func NewAnimationLibrary() *AnimationLibrary {
	lib := &AnimationLibrary{categories: make(map[string]animationCategory)}
	if err := json.Unmarshal(animationsJSON, &lib.categories); err != nil {
		slog.Error("AnimationLibrary failed to parse embedded catalogue", "error", err)
		return lib
	}
	slog.Debug("AnimationLibrary loaded", "categories", len(lib.categories))
	return lib
}

// Random returns a random animation reference from the category, or "" when
// the category is absent or empty.
func (l *AnimationLibrary) Random(category string) string {
	cat, ok := l.categories[category]
	if !ok || len(cat.Animations) == 0 {
		return ""
	}
	return cat.Animations[rand.IntN(len(cat.Animations))]
}

// Has reports whether the category contains at least one animation.
func (l *AnimationLibrary) Has(category string) bool {
	cat, ok := l.categories[category]
	return ok && len(cat.Animations) > 0
}
