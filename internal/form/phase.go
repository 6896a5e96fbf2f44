package form

// Extractor refines the value extracted from the request. The returned value
// becomes Data.Extracted. Returning an *ExtractionError records a validation
// failure; any other error aborts the extraction.
type Extractor interface {
	Extract(w *Widget, d *Data) (any, error)
}

// Renderer produces markup. Renderers read the output of the previous link
// from Data.Rendered and return the new output.
type Renderer interface {
	Render(w *Widget, d *Data) (string, error)
}

// Preprocessor prepares a Data node before extraction or rendering.
type Preprocessor interface {
	Preprocess(w *Widget, d *Data) error
}

// Builder runs once when a widget is constructed.
type Builder interface {
	Build(w *Widget, f *Factory) error
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(w *Widget, d *Data) (any, error)

func (fn ExtractorFunc) Extract(w *Widget, d *Data) (any, error) { return fn(w, d) }

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w *Widget, d *Data) (string, error)

func (fn RendererFunc) Render(w *Widget, d *Data) (string, error) { return fn(w, d) }

// PreprocessorFunc adapts a function to Preprocessor.
type PreprocessorFunc func(w *Widget, d *Data) error

func (fn PreprocessorFunc) Preprocess(w *Widget, d *Data) error { return fn(w, d) }

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(w *Widget, f *Factory) error

func (fn BuilderFunc) Build(w *Widget, f *Factory) error { return fn(w, f) }

// Link is one entry of a composed chain, tagged with the blueprint it came from.
type Link[T any] struct {
	Origin string
	Fn     T
}

// Phase categories reported in ContractError.
const (
	PhaseExtract    = "extract"
	PhaseRender     = "render"
	PhasePreprocess = "preprocess"
	PhaseBuild      = "build"
)
