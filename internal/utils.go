package internal

import "reflect"

func GetFromAttrs[T any](attrMap map[string]any, key string) (T, bool) {
	var n T
	if v, ok := attrMap[key]; ok {
		if t, ok := v.(T); ok {
			return t, true
		}
		var (
			rT = reflect.TypeOf((*T)(nil)).Elem()
			vT = reflect.TypeOf(v)
			vV = reflect.ValueOf(v)
		)

		if vT.AssignableTo(rT) {
			return vV.Interface().(T), true
		}

		if vT.ConvertibleTo(rT) {
			return vV.Convert(rT).Interface().(T), true
		}

		return n, false
	}
	return n, false
}
