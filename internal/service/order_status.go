package service

import (
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
)

// TransitionPolicy 订单状态流转表
type TransitionPolicy struct {
	name  string
	nexts map[string]map[string]bool
}

// linearTransitions 正向流程：pending -> preparing -> ready -> completed，任意非终态可取消
var linearTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusReady:     true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusCompleted: {},
	constants.OrderStatusCancelled: {},
}

// permissiveTransitions 任意状态可改为任意合法状态，与后台下拉框行为一致
func permissiveTransitions() map[string]map[string]bool {
	table := make(map[string]map[string]bool, len(constants.OrderStatuses))
	for _, from := range constants.OrderStatuses {
		row := make(map[string]bool, len(constants.OrderStatuses))
		for _, to := range constants.OrderStatuses {
			if to != from {
				row[to] = true
			}
		}
		table[from] = row
	}
	return table
}

// LinearPolicy 严格按流程推进
func LinearPolicy() TransitionPolicy {
	return TransitionPolicy{name: constants.StatusPolicyLinear, nexts: linearTransitions}
}

// PermissivePolicy 允许任意状态间切换
func PermissivePolicy() TransitionPolicy {
	return TransitionPolicy{name: constants.StatusPolicyPermissive, nexts: permissiveTransitions()}
}

// PolicyByName 按配置名称选择流转表，未知名称回退为 permissive
func PolicyByName(name string) TransitionPolicy {
	if strings.EqualFold(strings.TrimSpace(name), constants.StatusPolicyLinear) {
		return LinearPolicy()
	}
	return PermissivePolicy()
}

// Name 策略名称
func (p TransitionPolicy) Name() string {
	return p.name
}

// Allowed 判断 current -> target 是否允许，相同状态视为允许
func (p TransitionPolicy) Allowed(current, target string) bool {
	if !IsValidOrderStatus(target) {
		return false
	}
	if current == target {
		return true
	}
	nexts, ok := p.nexts[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// Next 返回 current 可流转到的状态，按流程顺序排列
func (p TransitionPolicy) Next(current string) []string {
	nexts := p.nexts[current]
	result := make([]string, 0, len(nexts))
	for _, status := range constants.OrderStatuses {
		if nexts[status] {
			result = append(result, status)
		}
	}
	return result
}

// IsValidOrderStatus 判断状态值是否合法
func IsValidOrderStatus(status string) bool {
	for _, candidate := range constants.OrderStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus 判断是否为终态
func IsTerminalOrderStatus(status string) bool {
	return status == constants.OrderStatusCompleted || status == constants.OrderStatusCancelled
}
