package loader

// Tag identifies one section in a .mod bytecode stream (§4.4, §6.1). A
// module file is a flat sequence of these, each followed by its
// section-specific payload and (for the container tags) terminated by
// its matching _END tag.
type Tag byte

const (
	TagModule Tag = iota + 1
	TagModuleEnd
	TagDependency
	TagClass
	TagClassEnd
	TagBlock
	TagBlockEnd
	TagFunction
	TagFunctionEnd
	TagException
	TagProperty
	TagDoc
	TagCode
	TagNames
	TagDoubles
)

func (t Tag) String() string {
	switch t {
	case TagModule:
		return "MODULE"
	case TagModuleEnd:
		return "MODULE_END"
	case TagDependency:
		return "DEPENDENCY"
	case TagClass:
		return "CLASS"
	case TagClassEnd:
		return "CLASS_END"
	case TagBlock:
		return "BLOCK"
	case TagBlockEnd:
		return "BLOCK_END"
	case TagFunction:
		return "FUNCTION"
	case TagFunctionEnd:
		return "FUNCTION_END"
	case TagException:
		return "EXCEPTION"
	case TagProperty:
		return "PROPERTY"
	case TagDoc:
		return "DOC"
	case TagCode:
		return "CODE"
	case TagNames:
		return "NAMES"
	case TagDoubles:
		return "DOUBLES"
	}
	return "UNKNOWN"
}
