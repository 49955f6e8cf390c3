package service

type Service struct {
	NotificatorService *NotificatorService
}

func New(sender Sender, opts Options) *Service {
	return &Service{NotificatorService: NewNotificatorService(sender, opts)}
}
