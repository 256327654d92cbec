package soap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Namespaces used on the wire.
const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	ServiceNS  = "urn:DatabaseService"
	xsiNS      = "http://www.w3.org/2001/XMLSchema-instance"
	xsdNS      = "http://www.w3.org/2001/XMLSchema"
)

var bodyExpr = xpath.MustCompile("/*[local-name()='Envelope']/*[local-name()='Body']")

// ErrClient marks faults caused by a malformed call rather than by the operation itself.
var ErrClient = errors.New("client error")

func clientErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrClient, fmt.Sprintf(format, args...))
}

// call is one parsed operation: the first element inside soap:Body.
type call struct {
	Operation string
	node      *xmlquery.Node
}

func parseCall(r io.Reader) (call, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return call{}, clientErr("malformed envelope: %v", err)
	}

	body := xmlquery.QuerySelector(doc, bodyExpr)
	if body == nil {
		return call{}, clientErr("missing soap:Body")
	}

	ops := childElements(body, "")
	if len(ops) == 0 {
		return call{}, clientErr("empty soap:Body")
	}

	return call{Operation: ops[0].Data, node: ops[0]}, nil
}

// param returns the named parameter element, or nil.
func (c call) param(name string) *xmlquery.Node {
	return childElement(c.node, name)
}

// text returns the trimmed text of the named parameter.
func (c call) text(name string) string {
	if n := c.param(name); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	return ""
}

func childElements(n *xmlquery.Node, name string) []*xmlquery.Node {
	var out []*xmlquery.Node
	if n == nil {
		return out
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && (name == "" || child.Data == name) {
			out = append(out, child)
		}
	}
	return out
}

func childElement(n *xmlquery.Node, name string) *xmlquery.Node {
	if els := childElements(n, name); len(els) > 0 {
		return els[0]
	}
	return nil
}

func childText(n *xmlquery.Node, name string) string {
	if c := childElement(n, name); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

// xsiAttr returns the value of an xsi: attribute such as type or nil.
func xsiAttr(n *xmlquery.Node, local string) string {
	for _, attr := range n.Attr {
		if attr.Name.Local != local {
			continue
		}
		if attr.Name.Space == "xsi" || attr.Name.Space == xsiNS || attr.NamespaceURI == xsiNS {
			return attr.Value
		}
	}
	return ""
}

// decodeValue reads a typed value. Elements with element children decode to a list,
// xsi:nil to nil, and xsi:type picks the scalar type. Untyped text stays a string.
func decodeValue(n *xmlquery.Node) any {
	if nilAttr := xsiAttr(n, "nil"); nilAttr == "true" || nilAttr == "1" {
		return nil
	}

	if items := childElements(n, ""); len(items) > 0 {
		list := make([]any, len(items))
		for i, item := range items {
			list[i] = decodeValue(item)
		}
		return list
	}

	text := n.InnerText()
	typ := xsiAttr(n, "type")
	if i := strings.LastIndex(typ, ":"); i >= 0 {
		typ = typ[i+1:]
	}

	switch typ {
	case "int", "integer", "long", "short", "byte", "unsignedInt", "unsignedShort", "unsignedByte":
		if v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return v
		}
	case "double", "float", "decimal":
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v
		}
	case "boolean":
		switch strings.TrimSpace(text) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	case "Array":
		return []any{}
	case "base64Binary":
		if v, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text)); err == nil {
			return v
		}
	}

	return text
}

// decodeKeyValues reads an ArrayOfKeyValue: <item><key/><value/></item>...
func decodeKeyValues(n *xmlquery.Node) map[string]any {
	data := map[string]any{}
	for _, item := range childElements(n, "item") {
		key := childText(item, "key")
		if value := childElement(item, "value"); value != nil {
			data[key] = decodeValue(value)
		} else {
			data[key] = nil
		}
	}
	return data
}

// decodeConditions reads an ArrayOfWhereCondition: <condition><field/><operator/><value/></condition>...
func decodeConditions(n *xmlquery.Node) []any {
	conds := []any{}
	for _, cond := range childElements(n, "condition") {
		var value any
		if v := childElement(cond, "value"); v != nil {
			value = decodeValue(v)
		}
		conds = append(conds, map[string]any{
			"field":    childText(cond, "field"),
			"operator": childText(cond, "operator"),
			"value":    value,
		})
	}
	return conds
}

// decodeColumns reads an ArrayOfColumnDefinition: <column><name/><type/><constraints/></column>...
func decodeColumns(n *xmlquery.Node) []any {
	cols := []any{}
	for _, col := range childElements(n, "column") {
		cols = append(cols, map[string]any{
			"name":        childText(col, "name"),
			"type":        childText(col, "type"),
			"constraints": childText(col, "constraints"),
		})
	}
	return cols
}

// decodeCriteria reads a SelectionCriteria into the decoded-payload shape.
func decodeCriteria(n *xmlquery.Node) map[string]any {
	criteria := map[string]any{}
	if n == nil {
		return criteria
	}

	if fields := childElement(n, "fields"); fields != nil {
		list := []any{}
		for _, s := range childElements(fields, "string") {
			list = append(list, strings.TrimSpace(s.InnerText()))
		}
		criteria["fields"] = list
	}

	if where := childElement(n, "where"); where != nil {
		criteria["where"] = decodeConditions(where)
	}

	if orderBy := childElement(n, "orderBy"); orderBy != nil {
		clauses := []any{}
		for _, clause := range childElements(orderBy, "clause") {
			clauses = append(clauses, map[string]any{
				"field":     childText(clause, "field"),
				"direction": childText(clause, "direction"),
			})
		}
		criteria["orderBy"] = clauses
	}

	for _, key := range []string{"limit", "offset"} {
		if v := childText(n, key); v != "" {
			criteria[key] = v
		}
	}

	return criteria
}
