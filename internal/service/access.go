package service

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/luckpool/registry/internal/model"
)

// AccessGuard 角色校验
//
// 注册表所有者在构造时固定；项目所有者取自项目记录。
// 这些校验作为前置条件组合进各写操作，不单独对外暴露。
type AccessGuard struct {
	registryOwner common.Address
}

// NewAccessGuard 创建角色校验器
func NewAccessGuard(registryOwner common.Address) *AccessGuard {
	return &AccessGuard{registryOwner: registryOwner}
}

// RequireRegistryOwner 要求调用者是注册表所有者
func (g *AccessGuard) RequireRegistryOwner(caller common.Address) error {
	if caller != g.registryOwner {
		return ErrUnauthorized
	}
	return nil
}

// RequireProjectOwner 要求调用者是项目所有者
func (g *AccessGuard) RequireProjectOwner(caller common.Address, project *model.Project) error {
	if caller != project.Owner() {
		return ErrOnlyProjectOwner
	}
	return nil
}
