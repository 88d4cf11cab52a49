// Package assets provides the HTML template and CSS style of the cover page.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in cover)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the pipeline. A custom directory may
// override the template, the style or both; anything it lacks falls back to
// the embedded copy.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── cover.css
//	└── templates/
//	    └── cover.html
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
