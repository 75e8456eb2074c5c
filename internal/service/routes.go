package service

import (
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/Lingz450/receiptsplit/internal/auth"
	"github.com/Lingz450/receiptsplit/internal/engine"
	"github.com/Lingz450/receiptsplit/internal/middleware"
)

// Procedure paths. There is no protobuf schema; the paths follow the
// Connect convention so stock clients can call them.
const (
	ProcBillCreate        = "/receiptsplit.v1.BillService/Create"
	ProcBillJoin          = "/receiptsplit.v1.BillService/Join"
	ProcBillJoinByCode    = "/receiptsplit.v1.BillService/JoinByCode"
	ProcBillUpdate        = "/receiptsplit.v1.BillService/Update"
	ProcBillClose         = "/receiptsplit.v1.BillService/Close"
	ProcBillReopen        = "/receiptsplit.v1.BillService/Reopen"
	ProcBillArchive       = "/receiptsplit.v1.BillService/Archive"
	ProcBillUnarchive     = "/receiptsplit.v1.BillService/Unarchive"
	ProcBillLeave         = "/receiptsplit.v1.BillService/Leave"
	ProcBillAddNote       = "/receiptsplit.v1.BillService/AddNote"
	ProcBillRenameSelf    = "/receiptsplit.v1.BillService/RenameSelf"
	ProcBillSetDeadline   = "/receiptsplit.v1.BillService/SetDeadline"
	ProcBillCopy          = "/receiptsplit.v1.BillService/Copy"
	ProcBillSetInvite     = "/receiptsplit.v1.BillService/SetInvite"
	ProcBillAddItem       = "/receiptsplit.v1.BillService/AddItem"
	ProcBillRemoveItem    = "/receiptsplit.v1.BillService/RemoveItem"
	ProcBillEditItem      = "/receiptsplit.v1.BillService/EditItem"
	ProcBillTip           = "/receiptsplit.v1.BillService/Tip"
	ProcBillSetWeights    = "/receiptsplit.v1.BillService/SetWeights"
	ProcBillPay           = "/receiptsplit.v1.BillService/Pay"
	ProcBillSettle        = "/receiptsplit.v1.BillService/Settle"
	ProcBillUnsettle      = "/receiptsplit.v1.BillService/Unsettle"
	ProcBillAddEditor     = "/receiptsplit.v1.BillService/AddEditor"
	ProcBillRemoveEditor  = "/receiptsplit.v1.BillService/RemoveEditor"
	ProcBillListEditors   = "/receiptsplit.v1.BillService/ListEditors"
	ProcBillAnchorReceipt = "/receiptsplit.v1.BillService/AnchorReceipt"
	ProcBillGet           = "/receiptsplit.v1.BillService/Get"
	ProcBillExport        = "/receiptsplit.v1.BillService/Export"
	ProcBillList          = "/receiptsplit.v1.BillService/List"
	ProcBillStats         = "/receiptsplit.v1.BillService/Stats"
	ProcBillBalance       = "/receiptsplit.v1.BillService/Balance"
	ProcBillActivity      = "/receiptsplit.v1.BillService/Activity"
	ProcBillDebt          = "/receiptsplit.v1.BillService/Debt"

	ProcGroupCreate  = "/receiptsplit.v1.GroupService/Create"
	ProcGroupAddBill = "/receiptsplit.v1.GroupService/AddBill"
	ProcGroupGet     = "/receiptsplit.v1.GroupService/Get"
	ProcGroupList    = "/receiptsplit.v1.GroupService/List"

	ProcTemplateSave   = "/receiptsplit.v1.TemplateService/Save"
	ProcTemplateCreate = "/receiptsplit.v1.TemplateService/Create"
	ProcTemplateGet    = "/receiptsplit.v1.TemplateService/Get"
	ProcTemplateList   = "/receiptsplit.v1.TemplateService/List"
)

// Register mounts every procedure on mux. All commands share one mutex, which
// gives the engine the single global command order it assumes. Mutating
// procedures require a bearer token; read-only ones accept anonymous calls.
func Register(mux *http.ServeMux, eng *engine.Engine, mu *sync.Mutex, jwtManager *auth.JWTManager, metrics *middleware.Metrics) {
	validate := validator.New()
	bills := NewBillService(eng, mu, validate)
	groups := NewGroupService(eng, mu, validate)
	templates := NewTemplateService(eng, mu, validate)

	// Interceptor order: metrics outermost, then auth so the logging
	// interceptor sees the resolved actor.
	authed := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(metrics.Interceptor(), middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	}
	open := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(metrics.Interceptor(), middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor()),
	}

	handle := func(procedure string, handler http.Handler) {
		mux.Handle(procedure, handler)
	}

	handle(ProcBillCreate, connect.NewUnaryHandler(ProcBillCreate, bills.Create, authed...))
	handle(ProcBillJoin, connect.NewUnaryHandler(ProcBillJoin, bills.Join, authed...))
	handle(ProcBillJoinByCode, connect.NewUnaryHandler(ProcBillJoinByCode, bills.JoinByCode, authed...))
	handle(ProcBillUpdate, connect.NewUnaryHandler(ProcBillUpdate, bills.Update, authed...))
	handle(ProcBillClose, connect.NewUnaryHandler(ProcBillClose, bills.Close, authed...))
	handle(ProcBillReopen, connect.NewUnaryHandler(ProcBillReopen, bills.Reopen, authed...))
	handle(ProcBillArchive, connect.NewUnaryHandler(ProcBillArchive, bills.Archive, authed...))
	handle(ProcBillUnarchive, connect.NewUnaryHandler(ProcBillUnarchive, bills.Unarchive, authed...))
	handle(ProcBillLeave, connect.NewUnaryHandler(ProcBillLeave, bills.Leave, authed...))
	handle(ProcBillAddNote, connect.NewUnaryHandler(ProcBillAddNote, bills.AddNote, authed...))
	handle(ProcBillRenameSelf, connect.NewUnaryHandler(ProcBillRenameSelf, bills.RenameSelf, authed...))
	handle(ProcBillSetDeadline, connect.NewUnaryHandler(ProcBillSetDeadline, bills.SetDeadline, authed...))
	handle(ProcBillCopy, connect.NewUnaryHandler(ProcBillCopy, bills.Copy, authed...))
	handle(ProcBillSetInvite, connect.NewUnaryHandler(ProcBillSetInvite, bills.SetInvite, authed...))
	handle(ProcBillAddItem, connect.NewUnaryHandler(ProcBillAddItem, bills.AddItem, authed...))
	handle(ProcBillRemoveItem, connect.NewUnaryHandler(ProcBillRemoveItem, bills.RemoveItem, authed...))
	handle(ProcBillEditItem, connect.NewUnaryHandler(ProcBillEditItem, bills.EditItem, authed...))
	handle(ProcBillTip, connect.NewUnaryHandler(ProcBillTip, bills.Tip, authed...))
	handle(ProcBillSetWeights, connect.NewUnaryHandler(ProcBillSetWeights, bills.SetWeights, authed...))
	handle(ProcBillPay, connect.NewUnaryHandler(ProcBillPay, bills.Pay, authed...))
	handle(ProcBillSettle, connect.NewUnaryHandler(ProcBillSettle, bills.Settle, authed...))
	handle(ProcBillUnsettle, connect.NewUnaryHandler(ProcBillUnsettle, bills.Unsettle, authed...))
	handle(ProcBillAddEditor, connect.NewUnaryHandler(ProcBillAddEditor, bills.AddEditor, authed...))
	handle(ProcBillRemoveEditor, connect.NewUnaryHandler(ProcBillRemoveEditor, bills.RemoveEditor, authed...))
	handle(ProcBillListEditors, connect.NewUnaryHandler(ProcBillListEditors, bills.ListEditors, open...))
	handle(ProcBillAnchorReceipt, connect.NewUnaryHandler(ProcBillAnchorReceipt, bills.AnchorReceipt, authed...))
	handle(ProcBillGet, connect.NewUnaryHandler(ProcBillGet, bills.Get, open...))
	handle(ProcBillExport, connect.NewUnaryHandler(ProcBillExport, bills.Export, open...))
	handle(ProcBillList, connect.NewUnaryHandler(ProcBillList, bills.List, open...))
	handle(ProcBillStats, connect.NewUnaryHandler(ProcBillStats, bills.Stats, open...))
	handle(ProcBillBalance, connect.NewUnaryHandler(ProcBillBalance, bills.Balance, open...))
	handle(ProcBillActivity, connect.NewUnaryHandler(ProcBillActivity, bills.Activity, open...))
	handle(ProcBillDebt, connect.NewUnaryHandler(ProcBillDebt, bills.Debt, open...))

	handle(ProcGroupCreate, connect.NewUnaryHandler(ProcGroupCreate, groups.Create, authed...))
	handle(ProcGroupAddBill, connect.NewUnaryHandler(ProcGroupAddBill, groups.AddBill, authed...))
	handle(ProcGroupGet, connect.NewUnaryHandler(ProcGroupGet, groups.Get, open...))
	handle(ProcGroupList, connect.NewUnaryHandler(ProcGroupList, groups.List, open...))

	handle(ProcTemplateSave, connect.NewUnaryHandler(ProcTemplateSave, templates.Save, authed...))
	handle(ProcTemplateCreate, connect.NewUnaryHandler(ProcTemplateCreate, templates.Create, authed...))
	handle(ProcTemplateGet, connect.NewUnaryHandler(ProcTemplateGet, templates.Get, open...))
	handle(ProcTemplateList, connect.NewUnaryHandler(ProcTemplateList, templates.List, open...))
}
