package ledger

import (
	"errors"
	"fmt"

	"bike-factory/internal/types"
)

// Code 标识台账错误的类别，所有失败都是确定性的前置条件违规
type Code string

const (
	CodeUnknownResource      Code = "UNKNOWN_RESOURCE"      // 需求引用了既不是零件也不是工站的 ID
	CodeUnknownStation       Code = "UNKNOWN_STATION"       // 工站 ID 不在流水线配置中
	CodeUnknownRecipe        Code = "UNKNOWN_RECIPE"        // 型号不在配方目录中
	CodeInsufficientResource Code = "INSUFFICIENT_RESOURCE" // 工站完工时某项资源不足
	CodeInsufficientParts    Code = "INSUFFICIENT_PARTS"    // 整车装配时某个零件不足
	CodeNoBikeAvailable      Code = "NO_BIKE_AVAILABLE"     // 成品库中没有该型号的整车
	CodeOrderNotFound        Code = "ORDER_NOT_FOUND"       // 订单引用不存在或已完成
	CodeValidationError      Code = "VALIDATION_ERROR"      // 必填字段缺失或数值非法
	CodePermissionDenied     Code = "PERMISSION_DENIED"     // 角色没有执行该操作的能力
)

// Error 是核心返回的结构化错误
// Resource/Required/Available 只在资源不足类错误中有意义
type Error struct {
	Code      Code
	Message   string
	Resource  string
	Required  int
	Available int
}

func (e *Error) Error() string {
	if e.Code == CodeInsufficientResource || e.Code == CodeInsufficientParts {
		return fmt.Sprintf("%s: %s (resource=%s, required=%d, available=%d)",
			e.Code, e.Message, e.Resource, e.Required, e.Available)
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (resource=%s)", e.Code, e.Message, e.Resource)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// asLedgerError 是 errors.As 的便捷封装
func asLedgerError(err error, target **Error) bool {
	return errors.As(err, target)
}

// CodeOf 提取错误的类别码，非台账错误返回空串
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsInsufficient 判断错误是否为资源不足（工站或装配路径）
func IsInsufficient(err error) bool {
	c := CodeOf(err)
	return c == CodeInsufficientResource || c == CodeInsufficientParts
}

func errUnknownResource(id string) *Error {
	return &Error{Code: CodeUnknownResource, Resource: id,
		Message: fmt.Sprintf("could not find part or station %q in this factory", id)}
}

func errUnknownStation(id types.StationID) *Error {
	return &Error{Code: CodeUnknownStation, Resource: string(id),
		Message: fmt.Sprintf("station %q is not part of the pipeline", id)}
}

func errUnknownRecipe(model types.BikeModel) *Error {
	return &Error{Code: CodeUnknownRecipe, Resource: string(model),
		Message: fmt.Sprintf("no parts recipe found for model %q", model)}
}

func errInsufficient(code Code, id string, required, available int) *Error {
	return &Error{Code: code, Resource: id, Required: required, Available: available,
		Message: fmt.Sprintf("need %d of %q, only %d available", required, id, available)}
}

func errNoBikeAvailable(model types.BikeModel) *Error {
	return &Error{Code: CodeNoBikeAvailable, Resource: string(model),
		Message: fmt.Sprintf("no assembled %q bikes available", model)}
}

func errOrderNotFound(ref string) *Error {
	return &Error{Code: CodeOrderNotFound, Resource: ref,
		Message: fmt.Sprintf("no pending order %q", ref)}
}

func errValidation(msg string) *Error {
	return &Error{Code: CodeValidationError, Message: msg}
}

func errPermissionDenied(actor types.Actor, op types.OpCode) *Error {
	return &Error{Code: CodePermissionDenied,
		Message: fmt.Sprintf("role %s may not perform %s", actor.Role, op)}
}
