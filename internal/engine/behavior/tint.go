package behavior

import "github.com/Faultbox/prism/internal/engine/actor"

// TintKey is the action key of Tint.
const TintKey actor.Key = "tint"

// UniformTint is the color multiplier uniform read by the default shaders.
const UniformTint = "uTint"

var white = [4]float32{1, 1, 1, 1}

// Tint multiplies the actor's color while it draws and restores white
// afterwards, so actors sharing a material are unaffected.
type Tint struct {
	Color [4]float32
}

func (t *Tint) ActionKey() actor.Key { return TintKey }

func (t *Tint) PreDraw(a *actor.Actor, u actor.Uniforms) {
	u.SetVec4(UniformTint, t.Color)
}

func (t *Tint) PostDraw(a *actor.Actor, u actor.Uniforms) {
	u.SetVec4(UniformTint, white)
}
