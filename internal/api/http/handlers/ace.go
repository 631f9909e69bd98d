// Package handlers ACE 引擎的 HTTP 处理器
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/weisyn/ace/internal/api/http/middleware"
	httptypes "github.com/weisyn/ace/internal/api/http/types"
	apitypes "github.com/weisyn/ace/internal/api/types"
	"github.com/weisyn/ace/internal/core/ace/engine"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/rawdb"
	"github.com/weisyn/ace/internal/core/ace/registry"
	"github.com/weisyn/ace/pkg/types"
)

// ACEService 处理器依赖的引擎能力
type ACEService interface {
	Layout() proofkind.Layout
	LatestEpoch(ctx context.Context) (uint64, error)
	GetProofStatus(ctx context.Context, kind proofkind.Kind) (registry.Status, common.Address, error)
	ValidateProof(ctx context.Context, submitter common.Address, kind proofkind.Kind, sender common.Address, proof []byte) (*engine.ValidationResult, error)
	ValidateProofByHash(ctx context.Context, kind proofkind.Kind, hash common.Hash, submitter common.Address) (bool, error)
	GetRegistry(ctx context.Context, owner common.Address) (*engine.RegistryInfo, error)
	GetNote(ctx context.Context, owner common.Address, noteHash common.Hash) (*rawdb.NoteRecord, error)
}

// ACEHandlers ACE 路由处理器
type ACEHandlers struct {
	svc ACEService
}

// NewACEHandlers 创建处理器
func NewACEHandlers(svc ACEService) *ACEHandlers {
	return &ACEHandlers{svc: svc}
}

// RegisterRoutes 注册 /ace 路由
func (h *ACEHandlers) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/ace")
	g.GET("/epoch", h.GetEpoch)
	g.POST("/proofs/validate", h.ValidateProof)
	g.GET("/proofs/:kind", h.GetProof)
	g.GET("/proofs/:kind/validated/:hash", h.GetValidated)
	g.GET("/registries/:owner", h.GetRegistry)
	g.GET("/registries/:owner/notes/:noteHash", h.GetNote)
}

// ============================================================================
//                              请求与响应
// ============================================================================

// ValidateRequest 证明验证请求
//
// Submitter 由调用方声明，接口不做认证。缓存条目只会被注册表所有者在进程内以相同
// submitter 调用 UpdateNoteRegistry 消费，HTTP 侧无法凭此写入注册表。
type ValidateRequest struct {
	Submitter string `json:"submitter" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
	Kind      uint32 `json:"kind" binding:"required"`
	Proof     string `json:"proof" binding:"required"`
}

// OutputView 证明输出
type OutputView struct {
	Hash        string   `json:"hash"`
	Encoded     string   `json:"encoded"`
	InputNotes  []string `json:"inputNotes"`
	OutputNotes []string `json:"outputNotes"`
	PublicOwner string   `json:"publicOwner"`
	PublicValue string   `json:"publicValue"`
}

// ValidateResponse 证明验证结果
type ValidateResponse struct {
	Cached  bool         `json:"cached"`
	Outputs []OutputView `json:"outputs"`
}

// ProofView 证明类型状态
type ProofView struct {
	Kind      uint32 `json:"kind"`
	Epoch     uint64 `json:"epoch"`
	Category  string `json:"category"`
	ID        uint64 `json:"id"`
	Status    string `json:"status"`
	Validator string `json:"validator,omitempty"`
}

// RegistryView 票据注册表
type RegistryView struct {
	Owner           string `json:"owner"`
	Custody         string `json:"custody"`
	Ledger          string `json:"ledger"`
	ScalingFactor   string `json:"scalingFactor"`
	CanAdjustSupply bool   `json:"canAdjustSupply"`
	CanConvert      bool   `json:"canConvert"`
	FactoryID       uint32 `json:"factoryId"`
	TotalSupply     string `json:"totalSupply"`
	TotalMinted     string `json:"totalMinted"`
	TotalBurned     string `json:"totalBurned"`
}

// NoteView 票据状态
type NoteView struct {
	Hash        string `json:"hash"`
	Status      string `json:"status"`
	CreatedAt   uint64 `json:"createdAt"`
	DestroyedAt uint64 `json:"destroyedAt,omitempty"`
}

// ============================================================================
//                              处理器
// ============================================================================

// GetEpoch GET /ace/epoch
func (h *ACEHandlers) GetEpoch(c *gin.Context) {
	epoch, err := h.svc.LatestEpoch(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"epoch": epoch})
}

// GetProof GET /ace/proofs/:kind
func (h *ACEHandlers) GetProof(c *gin.Context) {
	kind, good := parseKind(c)
	if !good {
		return
	}
	comps, err := h.svc.Layout().Decode(kind)
	if err != nil {
		fail(c, types.WrapMalformedInputError("%v", err))
		return
	}
	status, validator, err := h.svc.GetProofStatus(c.Request.Context(), kind)
	if err != nil {
		fail(c, err)
		return
	}
	view := ProofView{
		Kind:     uint32(kind),
		Epoch:    comps.Epoch,
		Category: comps.Category.String(),
		ID:       comps.ID,
		Status:   status.String(),
	}
	if validator != (common.Address{}) {
		view.Validator = validator.Hex()
	}
	ok(c, view)
}

// ValidateProof POST /ace/proofs/validate
func (h *ACEHandlers) ValidateProof(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apitypes.CodeBadRequest, err.Error())
		return
	}
	submitter, good := parseAddress(c, "submitter", req.Submitter)
	if !good {
		return
	}
	sender, good := parseAddress(c, "sender", req.Sender)
	if !good {
		return
	}
	proof, err := hexutil.Decode(req.Proof)
	if err != nil {
		middleware.Abort(c, apitypes.CodeBadRequest, "proof: "+err.Error())
		return
	}

	res, err := h.svc.ValidateProof(c.Request.Context(), submitter, proofkind.Kind(req.Kind), sender, proof)
	if err != nil {
		fail(c, err)
		return
	}
	out := ValidateResponse{Cached: res.Cached, Outputs: make([]OutputView, len(res.Outputs))}
	for i := range res.Outputs {
		o := &res.Outputs[i]
		enc, err := o.Encode()
		if err != nil {
			fail(c, err)
			return
		}
		view := OutputView{
			Hash:        res.Hashes[i].Hex(),
			Encoded:     hexutil.Encode(enc),
			InputNotes:  make([]string, len(o.InputNotes)),
			OutputNotes: make([]string, len(o.OutputNotes)),
			PublicOwner: o.PublicOwner.Hex(),
			PublicValue: "0",
		}
		if o.PublicValue != nil {
			view.PublicValue = o.PublicValue.String()
		}
		for j, n := range o.InputNotes {
			view.InputNotes[j] = n.Hash().Hex()
		}
		for j, n := range o.OutputNotes {
			view.OutputNotes[j] = n.Hash().Hex()
		}
		out.Outputs[i] = view
	}
	ok(c, out)
}

// GetValidated GET /ace/proofs/:kind/validated/:hash?submitter=
func (h *ACEHandlers) GetValidated(c *gin.Context) {
	kind, good := parseKind(c)
	if !good {
		return
	}
	hash, good := parseHash(c, "hash", c.Param("hash"))
	if !good {
		return
	}
	submitter, good := parseAddress(c, "submitter", c.Query("submitter"))
	if !good {
		return
	}
	validated, err := h.svc.ValidateProofByHash(c.Request.Context(), kind, hash, submitter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"validated": validated})
}

// GetRegistry GET /ace/registries/:owner
func (h *ACEHandlers) GetRegistry(c *gin.Context) {
	owner, good := parseAddress(c, "owner", c.Param("owner"))
	if !good {
		return
	}
	info, err := h.svc.GetRegistry(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, RegistryView{
		Owner:           info.Owner.Hex(),
		Custody:         info.Custody.Hex(),
		Ledger:          info.Ledger.Hex(),
		ScalingFactor:   info.ScalingFactor.Dec(),
		CanAdjustSupply: info.CanAdjustSupply,
		CanConvert:      info.CanConvert,
		FactoryID:       info.FactoryID,
		TotalSupply:     info.TotalSupply.Dec(),
		TotalMinted:     info.TotalMinted.Hex(),
		TotalBurned:     info.TotalBurned.Hex(),
	})
}

// GetNote GET /ace/registries/:owner/notes/:noteHash
func (h *ACEHandlers) GetNote(c *gin.Context) {
	owner, good := parseAddress(c, "owner", c.Param("owner"))
	if !good {
		return
	}
	hash, good := parseHash(c, "noteHash", c.Param("noteHash"))
	if !good {
		return
	}
	rec, err := h.svc.GetNote(c.Request.Context(), owner, hash)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, NoteView{
		Hash:        hash.Hex(),
		Status:      rec.Status.String(),
		CreatedAt:   rec.CreatedAt,
		DestroyedAt: rec.DestroyedAt,
	})
}

// ============================================================================
//                              辅助
// ============================================================================

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, httptypes.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// fail 以引擎原因码渲染错误
func fail(c *gin.Context, err error) {
	middleware.Abort(c, engine.ReasonOf(err), err.Error())
}

func parseKind(c *gin.Context) (proofkind.Kind, bool) {
	v, err := strconv.ParseUint(c.Param("kind"), 10, 32)
	if err != nil {
		middleware.Abort(c, apitypes.CodeBadRequest, "kind: "+err.Error())
		return 0, false
	}
	return proofkind.Kind(v), true
}

func parseAddress(c *gin.Context, field, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		middleware.Abort(c, apitypes.CodeBadRequest, field+": not a hex address")
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func parseHash(c *gin.Context, field, s string) (common.Hash, bool) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		middleware.Abort(c, apitypes.CodeBadRequest, field+": want 32-byte 0x-prefixed hex")
		return common.Hash{}, false
	}
	return common.BytesToHash(b), true
}
