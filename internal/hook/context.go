package hook

import "context"

type contextKey string

const turnKey contextKey = "turn"

// WithTurn records the current model round so tool hooks can report it.
func WithTurn(ctx context.Context, turn int) context.Context {
	return context.WithValue(ctx, turnKey, turn)
}

// Turn returns the model round stored in ctx, or 0.
func Turn(ctx context.Context) int {
	if turn, ok := ctx.Value(turnKey).(int); ok {
		return turn
	}
	return 0
}
