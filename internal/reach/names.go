package reach

import (
	"go/types"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// NameCache caches canonical function names so that generic instantiations
// and objects from different package variants map to the same key.
type NameCache struct {
	objCache *xsync.Map[types.Object, string]
}

// NewNameCache returns an empty cache safe for concurrent use.
func NewNameCache() *NameCache {
	return &NameCache{
		objCache: xsync.NewMap[types.Object, string](),
	}
}

// ObjectName returns packagePath.Name for functions and
// packagePath.Recv.Name or packagePath.*Recv.Name for methods. Generic
// receivers keep their type parameter names, e.g. "pkg.Box[T].Get".
func (c *NameCache) ObjectName(obj types.Object) string {
	if obj == nil {
		return ""
	}
	if name, ok := c.objCache.Load(obj); ok {
		return name
	}
	name := objectName(obj)
	c.objCache.Store(obj, name)
	return name
}

func objectName(obj types.Object) string {
	var b strings.Builder
	if pkg := obj.Pkg(); pkg != nil {
		b.WriteString(pkg.Path())
		b.WriteByte('.')
	}

	fn, ok := obj.(*types.Func)
	if !ok {
		b.WriteString(obj.Name())
		return b.String()
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		b.WriteString(obj.Name())
		return b.String()
	}

	if recv := sig.Recv(); recv != nil {
		recvType := recv.Type()
		if ptr, ok := recvType.(*types.Pointer); ok {
			recvType = ptr.Elem()
			b.WriteByte('*')
		}
		b.WriteString(typeName(recvType))
		b.WriteByte('.')
		b.WriteString(obj.Name())
		return b.String()
	}

	b.WriteString(obj.Name())
	writeTypeParams(&b, sig.TypeParams())
	return b.String()
}

// typeName returns the unqualified name of a receiver type.
func typeName(typ types.Type) string {
	named, ok := typ.(*types.Named)
	if !ok {
		return typ.String()
	}
	var b strings.Builder
	b.WriteString(named.Obj().Name())
	writeTypeParams(&b, named.Origin().TypeParams())
	return b.String()
}

func writeTypeParams(b *strings.Builder, params *types.TypeParamList) {
	if params == nil || params.Len() == 0 {
		return
	}
	b.WriteByte('[')
	for i := range params.Len() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(params.At(i).Obj().Name())
	}
	b.WriteByte(']')
}
