package bundle

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

// JSON field names for a Task manifest document, matching the shape
// original_source/core/Bundle.cpp reads/writes for a Function.
const (
	jName             = "Name"
	jType             = "Type"
	jTyInt            = "Int"
	jTyString         = "String"
	jTyNodePtr        = "NodePtr"
	jTyValuePtr       = "ValuePtr"
	jExprType         = "ExprType"
	jExprLiteral      = "Literal"
	jExprVarRead      = "VariableRead"
	jExprVarAddr      = "VariableAddress"
	jExprLiteralValue = "LiteralValue"
	jExprVarName      = "VariableName"
	jExprVarReadType  = "VariableReadType"
	jInitializer      = "Initializer"
	jParamRequired    = "ParameterRequired"
	jParamOptional    = "ParameterOptional"
	jLocalVariable    = "LocalVariable"
	jStatement        = "Statement"
	jStmtUnreachable  = "Unreachable"
	jStmtAssign       = "Assignment"
	jStmtAssignLHS    = "AssignmentLHS"
	jStmtAssignRHS    = "AssignmentRHS"
	jStmtOutput       = "Output"
	jStmtOutputExpr   = "OutputExpr"
	jStmtCall         = "Call"
	jStmtCallFunc     = "CallFunction"
	jStmtCallArg      = "CallArgument"
	jStmtReturn       = "Return"
	jStmtBranch       = "Branch"
	jBranchDefault    = "BranchDefault"
	jBranchCase       = "BranchCase"
	jBranchActionType = "ActionType"
	jBranchUr         = "Unreachable"
	jBranchFt         = "Fallthrough"
	jBranchJump       = "Jump"
	jBranchLabel      = "Label"
	jBranchCond       = "Condition"
	jBranchAction     = "Action"
	jFunctions        = "Function"
)

func valueKindFromJSONName(name string) (value.Kind, bool) {
	switch name {
	case jTyInt:
		return value.Int64, true
	case jTyString:
		return value.String, true
	case jTyNodePtr:
		return value.NodePtr, true
	case jTyValuePtr:
		return value.ValuePtr, true
	}
	return value.Void, false
}

// LoadTaskJSON parses a Task manifest document (a JSON object whose
// "Function" field is an array of Function objects) against root,
// reporting structural errors to d.
func LoadTaskJSON(json []byte, root *schema.RootType, d diag.Sink) (*program.Task, bool) {
	task := program.NewTask(root)
	ok := true

	functions := gjson.GetBytes(json, jFunctions)
	if !functions.IsArray() {
		d.Diagnostic(diag.Err_Serial_BadReference_Variable, diag.StringParam(jFunctions))
		return nil, false
	}

	functions.ForEach(func(_, fn gjson.Result) bool {
		f, fnOK := loadFunctionJSON(fn, d)
		if !fnOK {
			ok = false
		}
		task.AddFunction(f)
		return true
	})

	return task, ok
}

func loadFunctionJSON(fn gjson.Result, d diag.Sink) (*program.Function, bool) {
	name := fn.Get(jName).String()
	pop := d.PushPath("function " + name)
	defer pop()

	f := program.NewFunction(name)
	ok := true

	requiredCount := 0
	fn.Get(jParamRequired).ForEach(func(_, v gjson.Result) bool {
		if !addMemberFromJSON(d, f, v) {
			ok = false
		}
		requiredCount++
		return true
	})
	f.SetRequiredParamCount(requiredCount)

	optCount := 0
	fn.Get(jParamOptional).ForEach(func(_, v gjson.Result) bool {
		if !addMemberFromJSON(d, f, v) {
			ok = false
		}
		optCount++
		return true
	})
	f.SetParamCount(requiredCount + optCount)

	fn.Get(jLocalVariable).ForEach(func(_, v gjson.Result) bool {
		if !addMemberFromJSON(d, f, v) {
			ok = false
		}
		return true
	})

	fn.Get(jStatement).ForEach(func(_, stmt gjson.Result) bool {
		if !addStatementFromJSON(d, f, stmt) {
			ok = false
		}
		return true
	})

	return f, ok
}

func addMemberFromJSON(d diag.Sink, f *program.Function, v gjson.Result) bool {
	name := v.Get(jName).String()
	kind, known := valueKindFromJSONName(v.Get(jType).String())
	if !known {
		d.Diagnostic(diag.Err_Serial_UnknownValueKind, diag.StringParam(v.Get(jType).String()))
		return false
	}

	var initPtr *value.Value
	if init := v.Get(jInitializer); init.Exists() {
		var iv value.Value
		switch kind {
		case value.Int64:
			iv = value.FromInt64(init.Int())
		case value.String:
			iv = value.FromString(init.String())
		default:
			d.Diagnostic(diag.Err_Serial_UnexpectedInitializer, diag.StringParam(name))
			return false
		}
		initPtr = &iv
	}

	f.AddLocalVariable(name, kind, initPtr)
	return true
}

func addExpressionFromJSON(d diag.Sink, f *program.Function, v gjson.Result) (int, bool) {
	exprTy := v.Get(jExprType).String()
	switch exprTy {
	case jExprLiteral:
		lv := v.Get(jExprLiteralValue)
		if lv.Type == gjson.String {
			return f.AddExpression(program.NewLiteralExpr(value.FromString(lv.String()))), true
		}
		return f.AddExpression(program.NewLiteralExpr(value.FromInt64(lv.Int()))), true
	case jExprVarRead:
		name := v.Get(jExprVarName).String()
		kind, known := valueKindFromJSONName(v.Get(jExprVarReadType).String())
		if !known {
			d.Diagnostic(diag.Err_Serial_UnknownValueKind, diag.StringParam(v.Get(jExprVarReadType).String()))
			return -1, false
		}
		return f.AddExpression(program.NewVariableReadExpr(kind, name)), true
	case jExprVarAddr:
		return f.AddExpression(program.NewVariableAddressExpr(v.Get(jExprVarName).String())), true
	}
	d.Diagnostic(diag.Err_Serial_UnknownStatementKind, diag.StringParam(exprTy))
	return -1, false
}

func addStatementFromJSON(d diag.Sink, f *program.Function, stmt gjson.Result) bool {
	switch stmt.Get(jType).String() {
	case jStmtUnreachable:
		f.AddUnreachableStatement()
	case jStmtReturn:
		f.AddReturnStatement()
	case jStmtAssign:
		lhs := stmt.Get(jStmtAssignLHS)
		a := program.Assignment{LValueExprIndex: -1}
		if lhs.Type == gjson.String {
			a.LValueName = lhs.String()
		} else {
			idx, ok := addExpressionFromJSON(d, f, lhs)
			if !ok {
				return false
			}
			a.LValueExprIndex = idx
		}
		rhsIdx, ok := addExpressionFromJSON(d, f, stmt.Get(jStmtAssignRHS))
		if !ok {
			return false
		}
		a.RValueExprIndex = rhsIdx
		f.AddAssignmentStatement(a)
	case jStmtOutput:
		idx, ok := addExpressionFromJSON(d, f, stmt.Get(jStmtOutputExpr))
		if !ok {
			return false
		}
		f.AddOutputStatement(program.Output{ExprIndex: idx})
	case jStmtCall:
		c := program.Call{FunctionName: stmt.Get(jStmtCallFunc).String()}
		allOK := true
		stmt.Get(jStmtCallArg).ForEach(func(_, arg gjson.Result) bool {
			idx, ok := addExpressionFromJSON(d, f, arg)
			if !ok {
				allOK = false
				return true
			}
			c.ArgExprs = append(c.ArgExprs, idx)
			return true
		})
		if !allOK {
			return false
		}
		f.AddCallStatement(c)
	case jStmtBranch:
		b := program.Branch{}
		var ok bool
		b.DefaultAction, b.DefaultTargetIndex, b.DefaultLabelName, ok = branchActionFromJSON(d, stmt.Get(jBranchDefault))
		if !ok {
			return false
		}
		allOK := true
		stmt.Get(jBranchCase).ForEach(func(_, c gjson.Result) bool {
			exprIdx, exprOK := addExpressionFromJSON(d, f, c.Get(jBranchCond))
			if !exprOK {
				allOK = false
				return true
			}
			action, target, label, actOK := branchActionFromJSON(d, c.Get(jBranchAction))
			if !actOK {
				allOK = false
				return true
			}
			b.Cases = append(b.Cases, program.BranchCase{ExprIndex: exprIdx, Action: action, TargetStmtIndex: target, LabelName: label})
			return true
		})
		if !allOK {
			return false
		}
		f.AddBranchStatement(b)
	default:
		d.Diagnostic(diag.Err_Serial_UnknownStatementKind, diag.StringParam(stmt.Get(jType).String()))
		return false
	}
	return true
}

func branchActionFromJSON(d diag.Sink, v gjson.Result) (program.BranchAction, int, string, bool) {
	switch v.Get(jBranchActionType).String() {
	case jBranchJump:
		return program.BranchJump, -1, v.Get(jBranchLabel).String(), true
	case jBranchFt:
		return program.BranchFallthrough, -1, "", true
	case jBranchUr:
		return program.BranchUnreachable, -1, "", true
	}
	d.Diagnostic(diag.Err_Serial_UnknownBranchAction, diag.StringParam(v.Get(jBranchActionType).String()))
	return program.BranchUnreachable, -1, "", false
}

// SaveTaskJSON serializes task's functions back to a manifest document
// in the shape LoadTaskJSON reads, via sjson (used for its symmetric
// set-path API rather than constructing a map by hand). It writes each
// function's name and the name and type of each parameter and local
// variable; initializers and statements are not written.
func SaveTaskJSON(task *program.Task) ([]byte, error) {
	doc := []byte("{}")
	var err error
	for fi := 0; fi < task.FunctionCount(); fi++ {
		fn := task.Function(fi)
		path := jFunctions + "." + strconv.Itoa(fi) + "."
		doc, err = sjson.SetBytes(doc, path+jName, fn.Name())
		if err != nil {
			return nil, err
		}
		for li := 0; li < fn.LocalVariableCount(); li++ {
			section, si := jLocalVariable, li-fn.ParamCount()
			switch {
			case li < fn.RequiredParamCount():
				section, si = jParamRequired, li
			case li < fn.ParamCount():
				section, si = jParamOptional, li-fn.RequiredParamCount()
			}
			memberPath := path + section + "." + strconv.Itoa(si) + "."
			doc, err = sjson.SetBytes(doc, memberPath+jName, fn.LocalVariableName(li))
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetBytes(doc, memberPath+jType, jsonKindName(fn.LocalVariableKind(li)))
			if err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func jsonKindName(k value.Kind) string {
	switch k {
	case value.Int64:
		return jTyInt
	case value.String:
		return jTyString
	case value.NodePtr:
		return jTyNodePtr
	case value.ValuePtr:
		return jTyValuePtr
	}
	return jTyInt
}
