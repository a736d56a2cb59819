package observe

import "go.opentelemetry.io/otel/attribute"

// MethodMeta identifies an invoked method in records, spans and metrics.
type MethodMeta struct {
	Assembly string // Go package path, or the service name for HTTP routes
	Class    string // receiver type name; empty for plain functions
	Method   string // required
}

// SpanName is "method.exec.<Class>.<Method>", or "method.exec.<Method>" for
// plain functions.
func (m MethodMeta) SpanName() string {
	if m.Class == "" {
		return "method.exec." + m.Method
	}
	return "method.exec." + m.Class + "." + m.Method
}

// ID joins the non-empty parts with dots, e.g.
// "example.com/shop.Cart.Checkout".
func (m MethodMeta) ID() string {
	id := m.Method
	if m.Class != "" {
		id = m.Class + "." + id
	}
	if m.Assembly != "" {
		id = m.Assembly + "." + id
	}
	return id
}

func (m MethodMeta) Validate() error {
	if m.Method == "" {
		return ErrMissingMethodName
	}
	return nil
}

// Attributes describes m for spans and metric series. Empty Class and
// Assembly are left out.
func (m MethodMeta) Attributes() []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, 4)
	kvs = append(kvs,
		attribute.String("method.id", m.ID()),
		attribute.String("method.name", m.Method),
	)
	if m.Class != "" {
		kvs = append(kvs, attribute.String("method.class", m.Class))
	}
	if m.Assembly != "" {
		kvs = append(kvs, attribute.String("method.assembly", m.Assembly))
	}
	return kvs
}
