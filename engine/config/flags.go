package config

import "flag"

// Flags holds command-line overrides registered on a FlagSet.
type Flags struct {
	Config      *string
	Asset       *string
	Debug       *bool
	Watch       *bool
	Width       *int
	Height      *int
	DepthMode   *string
	PresentMode *string
	Profile     *bool
}

// RegisterFlags registers the viewer's flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:      fs.String("config", "", "Path to config file (.yaml or .toml)"),
		Asset:       fs.String("asset", "", "Path to the .glb/.gltf asset to view"),
		Debug:       fs.Bool("debug", false, "Enable debug logging"),
		Watch:       fs.Bool("watch", false, "Reload the asset when the file changes"),
		Width:       fs.Int("width", 0, "Window width"),
		Height:      fs.Int("height", 0, "Window height"),
		DepthMode:   fs.String("depth", "", "Depth attachment mode: auto, always or never"),
		PresentMode: fs.String("present", "", "Present mode: fifo, immediate or mailbox"),
		Profile:     fs.Bool("profile", false, "Log frame and memory statistics"),
	}
}

// Apply applies flag overrides to the config. Only flags that differ from their zero value override.
func (f *Flags) Apply(cfg *Config) {
	if *f.Asset != "" {
		cfg.Loader.AssetPath = *f.Asset
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.Watch {
		cfg.Watch.Enabled = true
	}
	if *f.Width > 0 {
		cfg.Window.Width = *f.Width
	}
	if *f.Height > 0 {
		cfg.Window.Height = *f.Height
	}
	if *f.DepthMode != "" {
		cfg.Renderer.DepthMode = *f.DepthMode
	}
	if *f.PresentMode != "" {
		cfg.Renderer.PresentMode = *f.PresentMode
	}
	if *f.Profile {
		cfg.Renderer.Profile = true
	}
}
