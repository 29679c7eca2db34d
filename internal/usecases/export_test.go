package usecases

// SetCodeGenerator replaces the code generator until the returned func is called.
func SetCodeGenerator(f func(length int) (string, error)) (restore func()) {
	prev := generateCode
	generateCode = f
	return func() { generateCode = prev }
}

// SetPasswordHasher replaces the password hasher until the returned func is called.
func SetPasswordHasher(f func(password string) (string, error)) (restore func()) {
	prev := hashPassword
	hashPassword = f
	return func() { hashPassword = prev }
}
