package diag

// Category constants are grouped by severity block and registered into
// categoryNames/categorySeverity below; SeverityOf and CategoryName both
// consult that registry instead of relying on numeric ranges, which
// keeps the groups readable as Go identifiers instead of magic offsets.

// Schema (IR) categories — spec.md §4.2.
const (
	Err_Schema_BadName_Empty Category = iota + 1
	Err_Schema_BadName_IllegalChar
	Err_Schema_BadName_PureNumber
	Err_Schema_NameClash_NodeType
	Err_Schema_BadRootReference
	Err_Schema_BadType_BadTypeForNodeParam
	Err_Schema_NameClash_Parameter
	Err_Schema_BadPrimaryKey_KeyNotFound
	Err_Schema_BadPrimaryKey_KeyNotUnique
	Err_Schema_BadReference_ChildNodeType
	Err_Schema_DuplicatedReference_ChildNodeType
)

// IR instance categories — spec.md §4.3.
const (
	Err_Instance_EmptyTree Category = iota + 100
	Err_Instance_DuplicatedReference_ChildNode
	Err_Instance_BadNodeOrder
	Err_Instance_ConflictingParentReference
	Err_Instance_BadNodeTypeIndex
	Err_Instance_UnreachableNode
	Err_Instance_BadParameterList_Count
	Err_Instance_BadParameterList_Type
	Err_Instance_UnexpectedChild
	Err_Instance_BrokenConstraint_ParamNotUnique
)

// Task/function categories — spec.md §4.4.
const (
	Err_Task_NameClash_Extern Category = iota + 200
	Err_Task_NameClash_Local
	Err_Task_NameClash_Function
	Err_Task_VoidKindVariable
	Err_Task_BadParameterCounts
	Err_Task_MissingOptionalInitializer
	Err_Task_BadLocalInitializerKind
	Err_Task_BadExpressionDependency
	Err_Task_BadReference_VariableRead
	Err_Task_BadReference_VariableWrite
	Err_Task_BadReference_VariableTakeAddress
	Err_Task_BadAssignment
	Err_Task_BadCall_ParameterCount
	Err_Task_BadCall_ParameterKind
	Err_Task_BadCall_BadReference
	Err_Task_BadBranch_ConditionKind
	Err_Task_BadLabelReference
	Err_Task_DuplicateLabel
	Err_Task_NoCallback
	Err_Task_BadCallbackReference
	Err_Task_BadOutputExpressionKind
	Warn_Task_UnreachableFunction Category = iota + 250
)

// Runtime categories — spec.md §4.6–§4.9.
const (
	Warn_Exec_UninitializedRead Category = iota + 300
	Err_Exec_TypeMismatch_ExpressionDependency
	Err_Exec_TypeMismatch_ReadByName
	Err_Exec_TypeMismatch_WriteByName
	Err_Exec_TypeMismatch_WriteByPointer
	Err_Exec_BadReference_VariableRead
	Err_Exec_BadReference_VariableWrite
	Err_Exec_BadReference_VariableTakeAddress
	Err_Exec_NullPointerException_ReadValue
	Err_Exec_NullPointerException_WriteValue
	Err_Exec_DanglingPointerException_ReadValue
	Err_Exec_DanglingPointerException_WriteValue
	Err_Exec_WriteToConst_WriteNodeParamByName
	Err_Exec_WriteToConst_WriteNodeParamByPointer
	Err_Exec_BadNodePointer_TraverseToParent
	Err_Exec_BadNodePointer_TraverseToChild
	Err_Exec_BadTraverse_ChildWithoutPrimaryKey
	Err_Exec_PrimaryKeyTypeMismatch
	Err_Exec_ParameterNotFound
	Err_Exec_ParameterNotUnique
	Err_Exec_UniqueKeyTypeMismatch
	Err_Exec_Unreachable
	Err_Exec_Assign_InvalidLHSType
	Err_Exec_Output_UnknownKind
	Err_Exec_Output_Failed
	Err_Exec_Call_BadReference
	Err_Exec_Call_BadArgumentList_Count
	Err_Exec_Call_BadArgumentList_Type
	Err_Exec_Branch_Unreachable
	Err_Exec_Branch_InvalidConditionType
	Err_Exec_StackOverflow
)

// Serialization categories — spec.md §6/§7.
const (
	Err_Serial_UnknownValueKind Category = iota + 400
	Err_Serial_UnsupportedLiteralKind
	Err_Serial_UnexpectedInitializer
	Err_Serial_UnknownBranchAction
	Err_Serial_UnknownStatementKind
	Err_Serial_BadReference_Variable
	Err_Serial_BadReference_IR
	Err_Serial_BadReference_OutputKind
	Err_Serial_BadReference_NodeType
	Err_Serial_UnknownNodeType
	Err_Serial_MissingRequiredParameter
	Err_Serial_DuplicateParameter
	Err_Serial_TypeMismatch
	Err_Serial_XMLExpectedElement
	Err_Serial_XMLMissingElement
	Err_Serial_XMLMissingAttribute
	Err_Serial_XMLBadAttributeValue
)

var categoryNames = map[Category]string{
	Err_Schema_BadName_Empty:                     "BadName_Empty",
	Err_Schema_BadName_IllegalChar:                "BadName_IllegalChar",
	Err_Schema_BadName_PureNumber:                 "BadName_PureNumber",
	Err_Schema_NameClash_NodeType:                 "NameClash_NodeType",
	Err_Schema_BadRootReference:                   "BadRootReference",
	Err_Schema_BadType_BadTypeForNodeParam:        "BadType_BadTypeForNodeParam",
	Err_Schema_NameClash_Parameter:                "NameClash_Parameter",
	Err_Schema_BadPrimaryKey_KeyNotFound:          "BadPrimaryKey_KeyNotFound",
	Err_Schema_BadPrimaryKey_KeyNotUnique:         "BadPrimaryKey_KeyNotUnique",
	Err_Schema_BadReference_ChildNodeType:         "BadReference_ChildNodeType",
	Err_Schema_DuplicatedReference_ChildNodeType:  "DuplicatedReference_ChildNodeType",

	Err_Instance_EmptyTree:                        "BadTree_EmptyTree",
	Err_Instance_DuplicatedReference_ChildNode:     "DuplicatedReference_ChildNode",
	Err_Instance_BadNodeOrder:                      "BadNodeOrder",
	Err_Instance_ConflictingParentReference:        "ConflictingParentReference",
	Err_Instance_BadNodeTypeIndex:                  "BadNodeTypeIndex",
	Err_Instance_UnreachableNode:                   "UnreachableNode",
	Err_Instance_BadParameterList_Count:            "BadParameterList_Count",
	Err_Instance_BadParameterList_Type:             "BadParameterList_Type",
	Err_Instance_UnexpectedChild:                   "UnexpectedChild",
	Err_Instance_BrokenConstraint_ParamNotUnique:   "BrokenConstraint_ParamNotUnique",

	Err_Task_NameClash_Extern:               "NameClash_Extern",
	Err_Task_NameClash_Local:                "NameClash_Local",
	Err_Task_NameClash_Function:             "NameClash_Function",
	Err_Task_VoidKindVariable:               "VoidKindVariable",
	Err_Task_BadParameterCounts:             "BadParameterCounts",
	Err_Task_MissingOptionalInitializer:     "MissingOptionalInitializer",
	Err_Task_BadLocalInitializerKind:        "BadLocalInitializerKind",
	Err_Task_BadExpressionDependency:        "BadExpressionDependency",
	Err_Task_BadReference_VariableRead:      "BadReference_VariableRead",
	Err_Task_BadReference_VariableWrite:     "BadReference_VariableWrite",
	Err_Task_BadReference_VariableTakeAddress: "BadReference_VariableTakeAddress",
	Err_Task_BadAssignment:                  "BadAssignment",
	Err_Task_BadCall_ParameterCount:         "BadCall_ParameterCount",
	Err_Task_BadCall_ParameterKind:          "BadCall_ParameterKind",
	Err_Task_BadCall_BadReference:           "BadCall_BadReference",
	Err_Task_BadBranch_ConditionKind:        "BadBranch_ConditionKind",
	Err_Task_BadLabelReference:              "BadLabelReference",
	Err_Task_DuplicateLabel:                 "DuplicateLabel",
	Err_Task_NoCallback:                     "NoCallback",
	Err_Task_BadCallbackReference:           "BadCallbackReference",
	Err_Task_BadOutputExpressionKind:        "BadOutputExpressionKind",
	Warn_Task_UnreachableFunction:           "UnreachableFunction",

	Warn_Exec_UninitializedRead:                     "UninitializedRead",
	Err_Exec_TypeMismatch_ExpressionDependency:       "TypeMismatch_ExpressionDependency",
	Err_Exec_TypeMismatch_ReadByName:                 "TypeMismatch_ReadByName",
	Err_Exec_TypeMismatch_WriteByName:                "TypeMismatch_WriteByName",
	Err_Exec_TypeMismatch_WriteByPointer:             "TypeMismatch_WriteByPointer",
	Err_Exec_BadReference_VariableRead:                "BadReference_VariableRead",
	Err_Exec_BadReference_VariableWrite:               "BadReference_VariableWrite",
	Err_Exec_BadReference_VariableTakeAddress:         "BadReference_VariableTakeAddress",
	Err_Exec_NullPointerException_ReadValue:           "NullPointerException_ReadValue",
	Err_Exec_NullPointerException_WriteValue:          "NullPointerException_WriteValue",
	Err_Exec_DanglingPointerException_ReadValue:       "DanglingPointerException_ReadValue",
	Err_Exec_DanglingPointerException_WriteValue:      "DanglingPointerException_WriteValue",
	Err_Exec_WriteToConst_WriteNodeParamByName:        "WriteToConst_WriteNodeParamByName",
	Err_Exec_WriteToConst_WriteNodeParamByPointer:     "WriteToConst_WriteNodeParamByPointer",
	Err_Exec_BadNodePointer_TraverseToParent:          "BadNodePointer_TraverseToParent",
	Err_Exec_BadNodePointer_TraverseToChild:           "BadNodePointer_TraverseToChild",
	Err_Exec_BadTraverse_ChildWithoutPrimaryKey:       "BadTraverse_ChildWithoutPrimaryKey",
	Err_Exec_PrimaryKeyTypeMismatch:                   "PrimaryKeyTypeMismatch",
	Err_Exec_ParameterNotFound:                        "ParameterNotFound",
	Err_Exec_ParameterNotUnique:                        "ParameterNotUnique",
	Err_Exec_UniqueKeyTypeMismatch:                     "UniqueKeyTypeMismatch",
	Err_Exec_Unreachable:                               "Unreachable",
	Err_Exec_Assign_InvalidLHSType:                     "Assign_InvalidLHSType",
	Err_Exec_Output_UnknownKind:                        "Output_Unknown_Kind",
	Err_Exec_Output_Failed:                             "Output_Unknown_Failed",
	Err_Exec_Call_BadReference:                         "Call_BadReference",
	Err_Exec_Call_BadArgumentList_Count:                "Call_BadArgumentList_Count",
	Err_Exec_Call_BadArgumentList_Type:                 "Call_BadArgumentList_Type",
	Err_Exec_Branch_Unreachable:                        "Branch_Unreachable",
	Err_Exec_Branch_InvalidConditionType:               "InvalidConditionType",
	Err_Exec_StackOverflow:                             "StackOverflow",

	Err_Serial_UnknownValueKind:        "UnknownValueKind",
	Err_Serial_UnsupportedLiteralKind:  "UnsupportedLiteralKind",
	Err_Serial_UnexpectedInitializer:   "UnexpectedInitializer",
	Err_Serial_UnknownBranchAction:     "UnknownBranchAction",
	Err_Serial_UnknownStatementKind:    "UnknownStatementKind",
	Err_Serial_BadReference_Variable:   "BadReference_Variable",
	Err_Serial_BadReference_IR:         "BadReference_IR",
	Err_Serial_BadReference_OutputKind: "BadReference_OutputKind",
	Err_Serial_BadReference_NodeType:   "BadReference_NodeType",
	Err_Serial_UnknownNodeType:         "UnknownNodeType",
	Err_Serial_MissingRequiredParameter: "MissingRequiredParameter",
	Err_Serial_DuplicateParameter:      "DuplicateParameter",
	Err_Serial_TypeMismatch:            "TypeMismatch",
	Err_Serial_XMLExpectedElement:      "XMLExpectedElement",
	Err_Serial_XMLMissingElement:       "XMLMissingElement",
	Err_Serial_XMLMissingAttribute:     "XMLMissingAttribute",
	Err_Serial_XMLBadAttributeValue:    "XMLBadAttributeValue",
}

var categorySeverity = map[Category]Severity{
	Warn_Task_UnreachableFunction: Warning,
	Warn_Exec_UninitializedRead:   Warning,
}

// SeverityOf returns the severity a Category was registered under.
// Categories default to Error unless explicitly listed in
// categorySeverity (today only the two documented warnings).
func SeverityOf(c Category) Severity {
	if sev, ok := categorySeverity[c]; ok {
		return sev
	}
	return Error
}

// CategoryName returns the stable diagnostic-id name for c, or a
// placeholder if c is not registered.
func CategoryName(c Category) string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "UnknownCategory"
}
