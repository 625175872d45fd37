package route

import (
	"git.fiblab.net/general/common/v2/geometry"
)

// turnArcPoints 转弯弧线采样点数
const turnArcPoints = 8

// ComputeTurnArc 计算转弯弧线
// 功能：在路口入口与出口之间用二次贝塞尔曲线插值出平滑转弯路径
// 参数：entry-入口点，exit-出口点，control-控制点（两条车道中心线的交点）
// 返回：从入口到出口的有序途经点序列（含两端）
// 说明：纯几何函数，无状态可重入；退化为三点折线也可接受，
// 采样更密只是为了让转弯过程的朝向变化更连续
func ComputeTurnArc(entry, exit, control geometry.Point) []geometry.Point {
	points := make([]geometry.Point, 0, turnArcPoints)
	for i := 0; i < turnArcPoints; i++ {
		t := float64(i) / float64(turnArcPoints-1)
		u := 1 - t
		points = append(points, geometry.Point{
			X: u*u*entry.X + 2*u*t*control.X + t*t*exit.X,
			Y: u*u*entry.Y + 2*u*t*control.Y + t*t*exit.Y,
		})
	}
	return points
}
