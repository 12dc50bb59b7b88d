// Package bundle loads and saves IR instances and tasks from their
// serialized forms: an XML document per IR instance (grounded on
// original_source/core/XML_IR.cpp) and a JSON manifest listing one
// task's functions (task_json.go, grounded on
// original_source/core/Bundle.cpp). See SPEC_FULL.md §11.
package bundle

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/instance"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

const (
	xmlRootInstance = "IRInstance"
	xmlAttrTypeName = "TypeName"
	xmlNode         = "Node"
	xmlAttrID       = "ID"
	xmlParameter    = "Parameter"
	xmlAttrName     = "Name"
	xmlAttrType     = "Type"
)

func valueKindName(k value.Kind) string {
	switch k {
	case value.Void:
		return "Void"
	case value.Int64:
		return "Int64"
	case value.String:
		return "String"
	case value.NodePtr:
		return "NodePtr"
	case value.ValuePtr:
		return "ValuePtr"
	}
	return "Void"
}

func valueKindFromName(name string) (value.Kind, bool) {
	switch name {
	case "Void":
		return value.Void, true
	case "Int64":
		return value.Int64, true
	case "String":
		return value.String, true
	case "NodePtr":
		return value.NodePtr, true
	case "ValuePtr":
		return value.ValuePtr, true
	}
	return value.Void, false
}

// SaveInstanceXML writes ri as a single IRInstance XML document: the
// root element carries the schema name, each Node element its type
// name and index, a Parameter child per declared parameter, and
// nested Node elements for children in stored order.
func SaveInstanceXML(w io.Writer, ri *instance.RootInstance) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: xmlRootInstance},
		Attr: []xml.Attr{{Name: xml.Name{Local: xmlAttrTypeName}, Value: ri.Schema().Name()}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if ri.NodeCount() > 0 {
		if err := writeXMLNode(enc, ri, 0); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func writeXMLNode(enc *xml.Encoder, ri *instance.RootInstance, nodeIndex int) error {
	node := ri.Node(nodeIndex)
	nt := ri.Schema().NodeType(node.TypeIndex())

	elem := xml.StartElement{
		Name: xml.Name{Local: xmlNode},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: xmlAttrTypeName}, Value: nt.Name()},
			{Name: xml.Name{Local: xmlAttrID}, Value: strconv.Itoa(nodeIndex)},
		},
	}
	if err := enc.EncodeToken(elem); err != nil {
		return err
	}

	for i, p := range nt.Parameters() {
		paramElem := xml.StartElement{
			Name: xml.Name{Local: xmlParameter},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: xmlAttrName}, Value: p.Name},
				{Name: xml.Name{Local: xmlAttrType}, Value: valueKindName(p.Kind)},
			},
		}
		if err := enc.EncodeToken(paramElem); err != nil {
			return err
		}
		text := parameterText(node.Parameter(i))
		if text != "" {
			if err := enc.EncodeToken(xml.CharData(text)); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(paramElem.End()); err != nil {
			return err
		}
	}

	for _, childIndex := range node.Children() {
		if err := writeXMLNode(enc, ri, childIndex); err != nil {
			return err
		}
	}

	return enc.EncodeToken(elem.End())
}

func parameterText(v value.Value) string {
	switch v.Kind() {
	case value.String:
		return v.StringValue()
	case value.Int64:
		return strconv.FormatInt(v.Int64Value(), 10)
	}
	return ""
}

// LoadInstanceXML parses an IRInstance XML document into a
// RootInstance against sch, reporting shape errors to d. It returns
// (nil, false) if reading this document reported an error; diagnostics
// already in d before the call do not affect the result. Nodes are
// numbered in document (pre-order) order, root first.
func LoadInstanceXML(r io.Reader, sch *schema.RootType, d diag.Sink) (*instance.RootInstance, bool) {
	dec := xml.NewDecoder(r)
	ok := true

	tok, err := nextStartElement(dec)
	if err != nil || tok.Name.Local != xmlRootInstance {
		d.Diagnostic(diag.Err_Serial_XMLExpectedElement, diag.StringParam(xmlRootInstance))
		return nil, false
	}

	ri := instance.NewRootInstance(sch)
	nodeTok, err := nextStartElement(dec)
	if err != nil || nodeTok.Name.Local != xmlNode {
		d.Diagnostic(diag.Err_Serial_XMLMissingElement, diag.StringParam(xmlNode))
		return nil, false
	}
	if _, ok2 := readXMLNode(dec, d, sch, ri, nodeTok, -1); !ok2 {
		ok = false
	}

	if !ok {
		return nil, false
	}
	return ri, true
}

func readXMLNode(dec *xml.Decoder, d diag.Sink, sch *schema.RootType, ri *instance.RootInstance, start xml.StartElement, parentIndex int) (int, bool) {
	typeName := attrValue(start, xmlAttrTypeName)
	typeIndex := sch.NodeTypeIndex(typeName)
	if typeIndex < 0 {
		d.Diagnostic(diag.Err_Serial_UnknownNodeType, diag.StringParam(typeName))
		return -1, false
	}
	nt := sch.NodeType(typeIndex)

	ok := true
	params := make([]value.Value, nt.ParameterCount())
	var children []int
	nodeIndex := ri.NodeCount()
	ri.AddNode(instance.NewNodeInstance(typeIndex, nodeIndex, parentIndex, nil, nil))

	for {
		next, end, err := nextToken(dec)
		if err != nil {
			d.Diagnostic(diag.Err_Serial_XMLMissingElement, diag.StringParam(xmlNode))
			return -1, false
		}
		if end {
			break
		}
		switch next.Name.Local {
		case xmlParameter:
			name := attrValue(next, xmlAttrName)
			kindName := attrValue(next, xmlAttrType)
			kind, known := valueKindFromName(kindName)
			if !known {
				d.Diagnostic(diag.Err_Serial_UnknownValueKind, diag.StringParam(kindName))
				ok = false
			}
			text2, terr := readElementText(dec)
			if terr != nil {
				ok = false
			}
			pi := nt.ParameterIndex(name)
			if pi < 0 {
				continue
			}
			switch kind {
			case value.String:
				params[pi] = value.FromString(text2)
			case value.Int64:
				n, convErr := strconv.ParseInt(text2, 10, 64)
				if convErr != nil {
					d.Diagnostic(diag.Err_Serial_XMLBadAttributeValue, diag.StringParam(name))
					ok = false
				}
				params[pi] = value.FromInt64(n)
			default:
				d.Diagnostic(diag.Err_Serial_TypeMismatch, diag.StringParam(name))
				ok = false
			}
		case xmlNode:
			childIdx, childOK := readXMLNode(dec, d, sch, ri, next, nodeIndex)
			if !childOK {
				ok = false
			} else {
				children = append(children, childIdx)
			}
		default:
			if err := skipToEnd(dec, next.Name); err != nil {
				ok = false
			}
		}
	}

	for i, p := range nt.Parameters() {
		if !params[i].IsInitialized() {
			if p.Unique {
				d.Diagnostic(diag.Err_Serial_MissingRequiredParameter, diag.StringParam(p.Name))
				ok = false
			}
			params[i] = value.ZeroOf(p.Kind, value.PointerHead{FunctionID: -1, StmtID: -1, ActivationID: -1})
		}
	}

	*ri.Node(nodeIndex) = *instance.NewNodeInstance(typeIndex, nodeIndex, parentIndex, params, children)
	return nodeIndex, ok
}

func attrValue(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func nextStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, isStart := tok.(xml.StartElement); isStart {
			return se, nil
		}
	}
}

// nextToken returns the next StartElement, or signals end=true when
// the enclosing element's EndElement is reached.
func nextToken(dec *xml.Decoder) (xml.StartElement, bool, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, false, nil
		case xml.EndElement:
			return xml.StartElement{}, true, nil
		}
	}
}

// readElementText reads tokens until the enclosing element's
// EndElement, concatenating any CharData found. Parameter elements
// carry only text, never nested elements, matching the writer above.
func readElementText(dec *xml.Decoder) (string, error) {
	var sb []byte
	for {
		tok, err := dec.Token()
		if err != nil {
			return string(sb), err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb = append(sb, t...)
		case xml.EndElement:
			return string(sb), nil
		}
	}
}

func skipToEnd(dec *xml.Decoder, name xml.Name) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name == name {
				depth++
			}
		case xml.EndElement:
			if t.Name == name {
				if depth == 0 {
					return nil
				}
				depth--
			}
		}
	}
}
