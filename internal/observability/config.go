package observability

// Config captures opt-in observability toggles that wire into the editor.
type Config struct {
	EnablePprofTrace bool
}
