package options

type ShaderOptions struct {
	ShaderPath *string
	Mode       *string
	Duration   *float64
	FPS        *int
	Width      *int
	Height     *int
	OutputFile *string
	FFMPEGPath *string
	Help       *bool
}
