package conflictgate

import "errors"

// ErrInternal сбой хранилища. Недоступность слота ошибкой не является.
var ErrInternal = errors.New("conflictgate: internal error")
