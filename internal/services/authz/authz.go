package authz

// AdminUser - зарезервированное имя суперпользователя, ролей в системе нет.
const AdminUser = "admin"

// CanDelete разрешает удаление автору записи и администратору.
func CanDelete(requestingUser, resourceOwner string) bool {
	return requestingUser == resourceOwner || requestingUser == AdminUser
}
