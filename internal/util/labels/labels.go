package labels

import (
	"maps"
	"sort"
	"strings"
)

// Label keys.
const (
	// KeyApp is the short app label the StatefulSet selects on.
	KeyApp = "app"

	KeyName      = "app.kubernetes.io/name"
	KeyInstance  = "app.kubernetes.io/instance"
	KeyComponent = "app.kubernetes.io/component"
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyReadOnly marks the read Service.
	KeyReadOnly = "readonly"
)

// Values.
const (
	AppName   = "mysql"
	ManagedBy = "mysqlset"

	ComponentDatabase = "database"
	ComponentClient   = "client"
)

// LabelBuilder provides a fluent interface for building object labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder seeded with the selector labels of the named set.
func NewLabelBuilder(name string) *LabelBuilder {
	return &LabelBuilder{labels: Selector(name)}
}

// WithInstance adds the instance and managed-by labels.
func (lb *LabelBuilder) WithInstance(name string) *LabelBuilder {
	lb.labels[KeyInstance] = name
	lb.labels[KeyManagedBy] = ManagedBy
	return lb
}

// WithComponent adds a component label.
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// WithReadOnly marks the object as the read-only entry point.
func (lb *LabelBuilder) WithReadOnly() *LabelBuilder {
	lb.labels[KeyReadOnly] = "true"
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	maps.Copy(lb.labels, extra)
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	return maps.Clone(lb.labels)
}

// Selector returns the immutable selector labels of the named set.
func Selector(name string) map[string]string {
	return map[string]string{
		KeyApp:  name,
		KeyName: AppName,
	}
}

// Common returns the labels put on every object mysqlset manages.
func Common(name string) map[string]string {
	return NewLabelBuilder(name).WithInstance(name).Build()
}

// Client returns the labels of a one-shot client pod. They never include the
// selector labels, so client pods are not routed to by the Services.
func Client(name string) map[string]string {
	return map[string]string{
		KeyInstance:  name,
		KeyManagedBy: ManagedBy,
		KeyComponent: ComponentClient,
	}
}

// Namespace returns the labels put on a namespace created by mysqlset.
func Namespace() map[string]string {
	return map[string]string{KeyManagedBy: ManagedBy}
}

// SelectorString renders the selector labels of the named set as a label selector.
func SelectorString(name string) string {
	return Format(Selector(name))
}

// Format renders labels as a comma-separated, key-sorted selector string.
func Format(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}
