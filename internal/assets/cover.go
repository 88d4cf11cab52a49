package assets

// Cover holds the raw assets of the cover page.
type Cover struct {
	Template string
	Style    string
}

// LoadCover loads the cover template and its style through loader.
func LoadCover(loader AssetLoader) (*Cover, error) {
	tmpl, err := loader.LoadTemplate(CoverTemplateName)
	if err != nil {
		return nil, err
	}
	style, err := loader.LoadStyle(CoverStyleName)
	if err != nil {
		return nil, err
	}
	return &Cover{Template: tmpl, Style: style}, nil
}
