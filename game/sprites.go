package game

import (
	"errors"
	"fmt"

	"github.com/plus3/pong/config"
	"github.com/plus3/pong/ecs"
)

// ErrSprite is returned when a sprite cannot be built from a texture.
var ErrSprite = errors.New("could not create sprite from texture")

// CreateSprites builds one sprite per texture. The sprites borrow the
// textures, so assets must outlive them.
func CreateSprites(assets *Assets) (map[PlayerId]Sprite, error) {
	sprites := make(map[PlayerId]Sprite, len(assets.Textures))
	for id, tex := range assets.Textures {
		if !id.Valid() {
			return nil, fmt.Errorf("%w: unknown player %s", ErrSprite, id)
		}
		if tex.Empty() {
			return nil, fmt.Errorf("%w: %s texture is empty", ErrSprite, id)
		}
		w, h := tex.Size()
		sprites[id] = Sprite{Texture: tex, Width: float32(w), Height: float32(h)}
	}
	return sprites, nil
}

// StartPositions returns the four paddle slots: top-left, top-right,
// bottom-left, bottom-right.
func StartPositions(arena Arena) [4]Position {
	left := float32(PaddlePadding)
	right := arena.Width - PaddlePadding - PaddleWidth
	top := float32(PaddlePadding)
	bottom := arena.Height - PaddlePadding - PaddleHeight
	return [4]Position{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: left, Y: bottom},
		{X: right, Y: bottom},
	}
}

// CreatePaddles spawns one paddle per sprite in PlayerId order, placed at
// the matching start position. Players missing from bindings get no
// PlayerContext and can only be driven by the autopilot.
func CreatePaddles(storage *ecs.Storage, sprites map[PlayerId]Sprite, arena Arena, bindings map[PlayerId]config.Bindings) map[PlayerId]ecs.EntityId {
	starts := StartPositions(arena)
	ids := make(map[PlayerId]ecs.EntityId, len(sprites))
	slot := 0
	for _, player := range AllPlayers() {
		sprite, ok := sprites[player]
		if !ok {
			continue
		}
		components := []any{
			starts[slot],
			sprite,
			Paddle{Player: player, Width: PaddleWidth, Height: PaddleHeight},
		}
		if b, ok := bindings[player]; ok {
			components = append(components, PlayerContext{Player: player, Bindings: b})
		}
		ids[player] = storage.Spawn(components...)
		slot++
	}
	return ids
}
