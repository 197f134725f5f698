// internal/service/order/domain/state.go
package domain

// State 定义了订单的生命周期状态。
// 状态只流转一次：pending（仅存在于内存中的处理过程）-> confirmed。
// 被拒绝的订单不会落库，因此没有对应的持久化状态。
type State string

const (
	StatePending   State = "pending"   // 预占尚未完成，订单未持久化
	StateConfirmed State = "confirmed" // 预占全部成功，订单已落库
)
