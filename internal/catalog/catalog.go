// Package catalog holds the static curriculum used for navigation: a nested
// class -> subject -> strand -> chapter mapping embedded at build time and
// loaded once. It is read-only and sits outside the quiz flow itself.
package catalog

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var curriculumYAML []byte

// Chapter is a single quiz topic within a strand.
type Chapter struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// Curriculum maps class -> subject -> strand -> chapters.
type Curriculum map[string]map[string]map[string][]Chapter

var (
	loadOnce   sync.Once
	curriculum Curriculum
	loadErr    error
)

// Load parses the embedded curriculum exactly once.
func Load() (Curriculum, error) {
	loadOnce.Do(func() {
		curriculum = Curriculum{}
		loadErr = yaml.Unmarshal(curriculumYAML, &curriculum)
	})
	return curriculum, loadErr
}

// Classes returns the known class identifiers in sorted order.
func (c Curriculum) Classes() []string {
	classes := make([]string, 0, len(c))
	for class := range c {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Chapters returns the chapter list for a class/subject/strand triple.
func (c Curriculum) Chapters(class, subject, strand string) []Chapter {
	subjects, ok := c[class]
	if !ok {
		return nil
	}
	strands, ok := subjects[subject]
	if !ok {
		return nil
	}
	return strands[strand]
}

// TopicTitle looks up the display title for a topic slug anywhere in the
// curriculum. Unknown slugs fall back to a title-cased form of the slug so
// headers never render raw identifiers.
func (c Curriculum) TopicTitle(slug string) string {
	for _, subjects := range c {
		for _, strands := range subjects {
			for _, chapters := range strands {
				for _, ch := range chapters {
					if ch.ID == slug {
						return ch.Title
					}
				}
			}
		}
	}
	return titleCase(strings.ReplaceAll(slug, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
