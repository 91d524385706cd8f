package model

// WikiPage is one markdown page from a cloned wiki tree.
type WikiPage struct {
	// Name is the page file name without the markdown extension.
	Name string `json:"name"`

	// Path is the page's path inside the cloned tree.
	Path string `json:"path"`

	// Body is the raw markdown page content.
	Body string `json:"body"`
}
