// Package advisor is a conversational course advisor for a university
// computer science catalog.
//
// An Advisor answers chat messages by resolving which courses a question is
// about, retrieving their catalog documents, and asking a chat model to
// answer with those documents and the recent conversation as context.
// Students can upload a transcript PDF; the completed courses it lists are
// remembered for the rest of the session.
//
//	adv, err := advisor.NewAdvisor("./courses.db")
//	if err != nil {
//		return err
//	}
//	defer adv.Close()
//
//	reply, err := adv.HandleChat(ctx, "What are the prerequisites for CSE 2231?", sessionID)
package advisor
