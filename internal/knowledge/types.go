// Package knowledge loads the curated portfolio content from YAML files and
// seeds it into the content store.
package knowledge

// File is the on-disk shape of one knowledge file.
type File struct {
	Section   string     `yaml:"section"`
	Documents []Document `yaml:"documents"`
}

// Document is a single entry inside a knowledge file.
type Document struct {
	ID       string   `yaml:"id,omitempty"`
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}
