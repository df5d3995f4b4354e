package app

// WithRegenerated makes Watch signal ch after each regeneration.
func (a *App) WithRegenerated(ch chan struct{}) *App {
	a.regenerated = ch
	return a
}
