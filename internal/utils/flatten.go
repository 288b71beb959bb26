package utils

// FlattenInto 将嵌套对象展开为带前缀的点路径字段并写入 dst。
// 部分更新嵌套对象时必须使用点路径，否则整体替换会清掉未提交的兄弟字段。
func FlattenInto(dst map[string]interface{}, prefix string, obj map[string]interface{}) {
	for k, v := range obj {
		key := prefix + "." + k
		if nested, ok := v.(map[string]interface{}); ok {
			FlattenInto(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}
