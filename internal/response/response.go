package response

// Внутренние коды ошибок API.
const (
	CodeUnknown        = 0 // Неизвестная ошибка
	CodeValidation     = 1 // Ошибка проверки данных
	CodeAccess         = 2 // Ошибка доступа: требуется авторизация или особая роль
	CodeAuthentication = 3 // Ошибка выполнения аутентификации
	CodeNotImplemented = 4 // Нереализованная возможность API
)

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Всегда "error"
	Type string `json:"type" example:"error"`

	// Человекочитаемое сообщение об ошибке
	// example: Ошибка валидации данных
	Message string `json:"message"`

	// Внутренний код ошибки для программной обработки (0-4)
	// example: 1
	ErrorCode int `json:"error_code"`
}

// Error собирает ответ с ошибкой с заданным внутренним кодом.
func Error(code int, message string) ErrorResponse {
	return ErrorResponse{Type: "error", Message: message, ErrorCode: code}
}

// ListResponse оборачивает список записей в стандартный конверт ответа.
type ListResponse struct {
	// Всегда "response"
	Type string `json:"type" example:"response"`

	// Записи ответа. Одиночная запись также возвращается списком из одного элемента
	Items []map[string]interface{} `json:"items"`
}

// List собирает конверт ответа из списка записей.
func List(items []map[string]interface{}) ListResponse {
	if items == nil {
		items = []map[string]interface{}{}
	}
	return ListResponse{Type: "response", Items: items}
}

// Single собирает конверт ответа из одной записи.
func Single(item map[string]interface{}) ListResponse {
	return List([]map[string]interface{}{item})
}

// ResultResponse — ответ об успешном выполнении операции без данных (импорт).
type ResultResponse struct {
	Result bool `json:"result" example:"true"`
}

// Result — успешный результат операции.
func Result() ResultResponse {
	return ResultResponse{Result: true}
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	RefreshToken string `json:"refresh_token"`
}
