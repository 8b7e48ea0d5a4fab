package confedit

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"

	"github.com/cloudbrew/hadoopctl/pkg/metrics"
)

// NoValue is a deletion sentinel for callers that can only express edits
// through the map view. Setting a property to NoValue removes it on Close.
// Any other textual value, including the empty string, is written verbatim.
const NoValue = "\x00"

// Property is one record of a Hadoop XML configuration file. Description is
// free text and optional; it is preserved for entries the editor does not
// touch and absent on newly added ones.
type Property struct {
	XMLName     xml.Name `xml:"property"`
	Name        string   `xml:"name"`
	Value       string   `xml:"value"`
	Description string   `xml:"description,omitempty"`
}

type propertyFile struct {
	XMLName    xml.Name   `xml:"configuration"`
	Properties []Property `xml:"property"`
}

// PropertySession is a scoped edit over one XML property file. It parses the
// file on open, hands out a mutable name/value view, and on Close rewrites
// the whole file: entries removed from the view are dropped, changed values
// are updated in place keeping their description, untouched entries are
// serialized unchanged, and new names are appended (sorted, no description).
//
// The file is not locked during the edit; callers serialize access.
type PropertySession struct {
	path    string
	entries []Property
	props   map[string]string
	orig    map[string]bool
	closed  bool
}

// OpenProperties starts an edit session on an existing property file.
func OpenProperties(path string) (*PropertySession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property file: %w", err)
	}

	var file propertyFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s := &PropertySession{
		path:  path,
		props: make(map[string]string, len(file.Properties)),
		orig:  make(map[string]bool, len(file.Properties)),
	}
	for _, p := range file.Properties {
		// name uniqueness: last entry wins, matching Hadoop's own loader
		if !s.orig[p.Name] {
			s.entries = append(s.entries, p)
		} else {
			for i := range s.entries {
				if s.entries[i].Name == p.Name {
					s.entries[i] = p
					break
				}
			}
		}
		s.props[p.Name] = p.Value
		s.orig[p.Name] = true
	}
	return s, nil
}

// Props returns the mutable name/value view of the file.
func (s *PropertySession) Props() map[string]string {
	return s.props
}

// Close computes the diff against the on-disk content and rewrites the file
// with canonical formatting. Closing twice is a no-op.
func (s *PropertySession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var out propertyFile
	for _, p := range s.entries {
		value, present := s.props[p.Name]
		if !present || value == NoValue {
			continue // removed
		}
		p.Value = value
		out.Properties = append(out.Properties, p)
	}

	var added []string
	for name, value := range s.props {
		if !s.orig[name] && value != NoValue {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		out.Properties = append(out.Properties, Property{
			Name:  name,
			Value: s.props[name],
		})
	}

	return writePropertyFile(s.path, &out)
}

func writePropertyFile(path string, file *propertyFile) error {
	body, err := xml.MarshalIndent(file, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write property file: %w", err)
	}
	metrics.ConfigEdits.WithLabelValues("xml").Inc()
	return nil
}

// EditProperties runs fn against the mutable view of path and guarantees the
// diff-and-rewrite happens on every exit path, including when fn fails.
func EditProperties(path string, fn func(props map[string]string) error) (err error) {
	s, err := OpenProperties(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s.Props())
}
