package report

import "errors"

// 报表流水线错误类型
//
// 四类错误对当前请求均为终态，内部不重试。
// 具体原因通过 fmt.Errorf("%w: %w", kind, cause) 附带，调用方使用 errors.Is 判断类型
var (
	ErrStoreUnavailable     = errors.New("考勤数据读取失败")
	ErrInvalidPeriod        = errors.New("无效的报表月份")
	ErrTemplateMissing      = errors.New("报表模板缺失或已损坏")
	ErrSerializationFailure = errors.New("报表文件生成失败")
)

// ErrBusinessRequired 企业名称为空
var ErrBusinessRequired = errors.New("企业名称不能为空")
