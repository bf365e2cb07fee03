package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Billing tasks
	RegisterHandler(GenerateDuePaymentsTask.TaskID(), GenerateDuePaymentsTask.HandleExecution)

	// Notification tasks
	RegisterHandler(SendPaymentRemindersTask.TaskID(), SendPaymentRemindersTask.HandleExecution)
}
