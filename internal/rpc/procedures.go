package rpc

const (
	// GroupServiceName is the fully-qualified name of the group service.
	GroupServiceName = "groupledger.v1.GroupService"
	// ExpenseServiceName is the fully-qualified name of the expense service.
	ExpenseServiceName = "groupledger.v1.ExpenseService"
	// SettlementServiceName is the fully-qualified name of the settlement service.
	SettlementServiceName = "groupledger.v1.SettlementService"
)

// Procedure paths, as routed by the HTTP mux.
const (
	GroupServiceCreateGroupProcedure        = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure           = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure         = "/" + GroupServiceName + "/ListGroups"
	GroupServiceUpdateGroupProcedure        = "/" + GroupServiceName + "/UpdateGroup"
	GroupServiceDeleteGroupProcedure        = "/" + GroupServiceName + "/DeleteGroup"
	GroupServiceGetGroupBalancesProcedure   = "/" + GroupServiceName + "/GetGroupBalances"
	GroupServiceGetGroupSummaryProcedure    = "/" + GroupServiceName + "/GetGroupSummary"
	GroupServiceWatchGroupBalancesProcedure = "/" + GroupServiceName + "/WatchGroupBalances"

	ExpenseServiceAddExpenseProcedure    = "/" + ExpenseServiceName + "/AddExpense"
	ExpenseServiceGetExpenseProcedure    = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceUpdateExpenseProcedure = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceListExpensesProcedure  = "/" + ExpenseServiceName + "/ListExpenses"

	SettlementServiceRecordSettlementProcedure = "/" + SettlementServiceName + "/RecordSettlement"
	SettlementServiceGetSettlementProcedure    = "/" + SettlementServiceName + "/GetSettlement"
	SettlementServiceUpdateSettlementProcedure = "/" + SettlementServiceName + "/UpdateSettlement"
	SettlementServiceDeleteSettlementProcedure = "/" + SettlementServiceName + "/DeleteSettlement"
	SettlementServiceListSettlementsProcedure  = "/" + SettlementServiceName + "/ListSettlements"
)
