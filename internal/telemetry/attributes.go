package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	AttrProxyID     = "proxy.id"
	AttrProxyProto  = "proxy.protocol"
	AttrProxyStatus = "proxy.status"

	AttrTaskName       = "task.name"
	AttrTaskShared     = "task.shared"
	AttrTaskExecution  = "task.execution_count"
	AttrTaskFailures   = "task.failure_count"

	AttrAdapterName  = "adapter.name"
	AttrBatchSize    = "validator.batch_size"
	AttrBatchSuccess = "validator.success_count"
	AttrBatchFailed  = "validator.failed_count"
)

// ProxyAttributes возвращает атрибуты для операций над одним прокси
func ProxyAttributes(id int64, protocol string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrProxyID, id),
		attribute.String(AttrProxyProto, protocol),
	}
}

// TaskAttributes возвращает атрибуты выполнения задачи планировщика
func TaskAttributes(name string, shared bool, executionCount, failureCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrTaskName, name),
		attribute.Bool(AttrTaskShared, shared),
		attribute.Int(AttrTaskExecution, executionCount),
		attribute.Int(AttrTaskFailures, failureCount),
	}
}

// ValidationBatchAttributes возвращает атрибуты одного прогона валидатора
func ValidationBatchAttributes(total, success, failed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrBatchSize, total),
		attribute.Int(AttrBatchSuccess, success),
		attribute.Int(AttrBatchFailed, failed),
	}
}
