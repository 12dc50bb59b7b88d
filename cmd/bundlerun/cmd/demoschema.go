package cmd

import (
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

// demoSchema is bundlerun's one built-in IR schema: a script of speech
// lines. spec.md defines no serialization format for a RootType itself
// (only for RootInstance documents and the Task manifest), so a schema
// a bundle runs against has to come from somewhere other than the CLI
// input files — this CLI ships one fixed schema rather than inventing
// an ad hoc schema file format outside the core's scope.
func demoSchema() *schema.RootType {
	rt := schema.NewRootType("Script")

	root := schema.NewNodeType("root")
	root.AddChildType("speech")

	speech := schema.NewNodeType("speech")
	speech.AddParameter("character", value.String, true)
	speech.AddParameter("text", value.String, false)
	speech.SetPrimaryKey("character")

	rt.AddNodeType(root)
	rt.AddNodeType(speech)
	rt.SetRootNodeType("root")
	return rt
}
