package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrEmptyGroup 分组替换时新记录集合为空
var ErrEmptyGroup = errors.New("考勤分组不能为空")
