package manager

import (
	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/model"
)

// The wire records stop at this package boundary; everything past the
// managers works on model structs.

func mailingListFromRecord(rec hyperkitty.MailingListRecord) model.MailingList {
	return model.MailingList{
		URL:           rec.URL,
		Name:          rec.Name,
		DisplayName:   rec.DisplayName,
		Description:   rec.Description,
		SubjectPrefix: rec.SubjectPrefix,
		ArchivePolicy: rec.ArchivePolicy,
		CreatedAt:     rec.CreatedAt,
		ThreadsURL:    rec.Threads,
		EmailsURL:     rec.Emails,
	}
}

func threadFromRecord(rec hyperkitty.ThreadRecord) model.Thread {
	return model.Thread{
		URL:           rec.URL,
		MailingList:   rec.MailingList,
		ThreadID:      rec.ThreadID,
		Subject:       rec.Subject,
		DateActive:    rec.DateActive,
		StartingEmail: rec.StartingEmail,
		EmailsURL:     rec.Emails,
		VotesTotal:    rec.VotesTotal,
		RepliesTotal:  rec.RepliesCount,
		NextThread:    stringOrEmpty(rec.NextThread),
		PrevThread:    stringOrEmpty(rec.PrevThread),
	}
}

func senderFromRecord(rec hyperkitty.EmailRecord) model.Sender {
	return model.Sender{
		MailmanID:   rec.Sender.MailmanID,
		Address:     rec.Sender.Address,
		DisplayName: rec.SenderName,
		EmailsURL:   rec.Sender.Emails,
	}
}

func emailFromRecord(rec hyperkitty.EmailRecord, senderID int64) model.Email {
	return model.Email{
		URL:           rec.URL,
		MailingList:   rec.MailingList,
		MessageID:     rec.MessageID,
		MessageIDHash: rec.MessageIDHash,
		ThreadURL:     rec.Thread,
		SenderName:    rec.SenderName,
		SenderID:      senderID,
		Subject:       rec.Subject,
		Date:          rec.Date,
		ParentURL:     stringOrEmpty(rec.Parent),
		Content:       rec.Content,
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
