package utils

import "math"

// Int32Seed は設定上の int64 シードを genai が受け付ける *int32 に変換します。
// nil はシード未指定としてそのまま nil を返します。範囲外の値は int32 に収まるよう丸めるのだ。
func Int32Seed(seed *int64) *int32 {
	if seed == nil {
		return nil
	}
	v := *seed
	if v > math.MaxInt32 || v < math.MinInt32 {
		v %= math.MaxInt32
	}
	s := int32(v)
	return &s
}
