package service

import "errors"

// 注册表操作的错误类型，调用方可用 errors.Is 区分拒绝原因。
// "项目不存在" 复用 repository.ErrProjectNotFound。
var (
	ErrUnauthorized          = errors.New("caller is not the registry owner")
	ErrOnlyProjectOwner      = errors.New("caller is not the project owner")
	ErrTotalSupplyZero       = errors.New("total supply must be non-zero")
	ErrProjectAlreadyStarted = errors.New("project already started")
	ErrProjectNotInProgress  = errors.New("project not in progress")
	ErrProjectNotFinished    = errors.New("project not finished")
	ErrMerkleRootAlreadySet  = errors.New("merkle root already set")
	ErrZeroMerkleRoot        = errors.New("merkle root must be non-zero")
	ErrOffsetOutOfBounds     = errors.New("offset out of bounds")
	ErrInvalidMerkleProof    = errors.New("invalid merkle proof")
	ErrLotteryAlreadyDrawn   = errors.New("lottery already drawn")
	ErrInvalidAddress        = errors.New("invalid participant address")
)
